// Package llm generates answers from prompts.
package llm

import (
	"context"
	"errors"
)

// UnavailableMessage is the answer used when no generator is configured.
const UnavailableMessage = "AI response generation is not available. Please check your Google API key configuration."

// ErrUnavailable is reported by the Unavailable generator.
var ErrUnavailable = errors.New("llm: generator not configured")

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Ping sends a trivial prompt to check that the model answers.
	Ping(ctx context.Context) error
}

// Unavailable stands in for a generator when no API key is configured.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string) (string, error) {
	return UnavailableMessage, nil
}

func (Unavailable) Ping(context.Context) error {
	return ErrUnavailable
}
