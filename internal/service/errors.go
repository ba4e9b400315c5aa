// Package service holds the use cases behind the HTTP API. Services return sentinel
// errors, sometimes wrapped in an *Error that carries a user-facing detail; the handler
// layer maps them to status codes.
package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")

	ErrSpaceNotFound    = errors.New("space not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrChatNotFound     = errors.New("chat not found")
	ErrDuplicateName    = errors.New("space name already exists")

	ErrReaderNil       = errors.New("reader is nil")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrDuplicateFile   = errors.New("file already exists in space")
	ErrEmptyText       = errors.New("no text extracted")

	ErrEmptyQuery        = errors.New("empty search query")
	ErrInvalidMaxResults = errors.New("max_results out of range")
)

// Error attaches a user-facing detail to a sentinel. errors.Is matches the sentinel.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string { return e.Kind.Error() + ": " + e.Detail }
func (e *Error) Unwrap() error { return e.Kind }

func detailed(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
