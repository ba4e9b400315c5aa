package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages: postgres (SQL) and mongo (document store,
// including its in-memory substitute).

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("record already exists")
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store bundles the repositories of one persistence backend.
type Store struct {
	Users     UserRepository
	Spaces    SpaceRepository
	Documents DocumentRepository
	Chats     ChatRepository
	Messages  MessageRepository
	Health    Pinger
}

// Totals is a document count with the summed size of those documents.
type Totals struct {
	Count     int64
	SizeBytes int64
}

// List limits applied by every implementation.
const (
	MaxSpaces    = 100
	MaxDocuments = 1000
	MaxChats     = 100
	MaxMessages  = 1000
)
