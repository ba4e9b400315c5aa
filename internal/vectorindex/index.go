// Package vectorindex stores chunk embeddings and answers nearest-neighbour queries.
// The hosted implementation talks to Pinecone; the local one keeps vectors in
// chromem-go, optionally persisted to disk.
package vectorindex

import "context"

// Metadata travels with every vector and comes back with every match.
type Metadata struct {
	Text        string `json:"text"`
	Filename    string `json:"filename"`
	SpaceID     string `json:"space_id"`
	ChunkID     int    `json:"chunk_id"`
	TotalChunks int    `json:"total_chunks"`
}

type Vector struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

// Filter restricts queries and deletions. Empty fields do not constrain.
type Filter struct {
	SpaceIDs []string
	Filename string
}

type QueryRequest struct {
	Vector []float32
	TopK   int
	Filter Filter
}

// Match is one query hit. Score is the cosine similarity, higher is closer.
type Match struct {
	ID       string
	Score    float64
	Metadata Metadata
}

type Stats struct {
	TotalVectors int64
	Dimension    int
	Fullness     float64
	Namespaces   map[string]any
}

// Index is the vector store used by the document and search services.
type Index interface {
	Upsert(ctx context.Context, vectors []Vector) error
	// Query returns at most TopK matches ordered by Score, highest first.
	Query(ctx context.Context, req QueryRequest) ([]Match, error)
	// DeleteByFilter removes every vector matching f and reports how many were removed.
	DeleteByFilter(ctx context.Context, f Filter) (int, error)
	// DeleteByIDs removes exactly the listed vectors.
	DeleteByIDs(ctx context.Context, ids []string) error
	Stats(ctx context.Context) (Stats, error)
	Name() string
}
