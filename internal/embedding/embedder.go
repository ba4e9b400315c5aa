// Package embedding turns text into vectors for the vector index.
package embedding

import "context"

// Embedder generates embeddings for one or more texts. The result has one vector per
// input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	// Name identifies the model, as reported by the health endpoint.
	Name() string
}
