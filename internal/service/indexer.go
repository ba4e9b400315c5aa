package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"beecok/internal/chunker"
	"beecok/internal/embedding"
	"beecok/internal/vectorindex"
)

// Indexer turns document text into chunk vectors and keeps the vector index in step
// with the documents table.
type Indexer struct {
	splitter *chunker.Splitter
	embedder embedding.Embedder
	index    vectorindex.Index
	log      *zap.Logger
}

func NewIndexer(splitter *chunker.Splitter, embedder embedding.Embedder, index vectorindex.Index, log *zap.Logger) *Indexer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Indexer{splitter: splitter, embedder: embedder, index: index, log: log}
}

// Index chunks text, embeds the chunks and upserts them tagged with filename and spaceID.
// It returns the ids of the vectors it sent. When the upsert fails the ids are returned
// with the error, since part of the batch may already be stored.
func (x *Indexer) Index(ctx context.Context, text, filename, spaceID string) ([]string, error) {
	chunks := x.splitter.Split(text)
	if len(chunks) == 0 {
		return nil, nil
	}
	vectors, err := x.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	ids := make([]string, len(chunks))
	batch := make([]vectorindex.Vector, len(chunks))
	for i, chunk := range chunks {
		ids[i] = uuid.NewString()
		batch[i] = vectorindex.Vector{
			ID:     ids[i],
			Values: vectors[i],
			Metadata: vectorindex.Metadata{
				Text:        chunk,
				Filename:    filename,
				SpaceID:     spaceID,
				ChunkID:     i,
				TotalChunks: len(chunks),
			},
		}
	}
	if err := x.index.Upsert(ctx, batch); err != nil {
		return ids, fmt.Errorf("upsert vectors: %w", err)
	}
	x.log.Info("document indexed",
		zap.String("filename", filename),
		zap.String("space_id", spaceID),
		zap.Int("chunks", len(chunks)),
	)
	return ids, nil
}

// Remove deletes every vector of filename in spaceID.
func (x *Indexer) Remove(ctx context.Context, filename, spaceID string) (int, error) {
	n, err := x.index.DeleteByFilter(ctx, vectorindex.Filter{SpaceIDs: []string{spaceID}, Filename: filename})
	if err != nil {
		return n, fmt.Errorf("delete vectors of %s: %w", filename, err)
	}
	return n, nil
}

// Discard deletes the vectors with the given ids, typically the result of a failed upload.
func (x *Indexer) Discard(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := x.index.DeleteByIDs(ctx, ids); err != nil {
		return fmt.Errorf("delete %d vectors: %w", len(ids), err)
	}
	return nil
}

// Search embeds query and returns the topK closest chunks matching f.
func (x *Indexer) Search(ctx context.Context, query string, topK int, f vectorindex.Filter) ([]vectorindex.Match, error) {
	vectors, err := x.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}
	return x.index.Query(ctx, vectorindex.QueryRequest{Vector: vectors[0], TopK: topK, Filter: f})
}

// Stats reports the index state in the shape used by /health and /stats.
func (x *Indexer) Stats(ctx context.Context) (vectorindex.Stats, error) {
	return x.index.Stats(ctx)
}

func (x *Indexer) IndexName() string { return x.index.Name() }

func (x *Indexer) EmbeddingModel() string { return x.embedder.Name() }

func (x *Indexer) Dimensions() int { return x.embedder.Dimensions() }
