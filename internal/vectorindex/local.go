package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"
)

const localCollection = "beecok-chunks"

// errNoEmbeddingFunc is returned if chromem ever asks the collection to embed text
// itself. Every document and query arrives with a precomputed vector.
var errNoEmbeddingFunc = errors.New("vectorindex: embeddings must be precomputed")

// Local is an Index backed by chromem-go. With an empty path it is purely in memory.
type Local struct {
	db         *chromem.DB
	collection *chromem.Collection
	dims       int
}

func NewLocal(path string, dims int) (*Local, error) {
	var (
		db  *chromem.DB
		err error
	)
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open local index at %s: %w", path, err)
		}
	}
	ef := func(context.Context, string) ([]float32, error) { return nil, errNoEmbeddingFunc }
	c, err := db.GetOrCreateCollection(localCollection, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create local collection: %w", err)
	}
	return &Local{db: db, collection: c, dims: dims}, nil
}

func (l *Local) Name() string { return "local" }

func (l *Local) Upsert(ctx context.Context, vectors []Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	docs := make([]chromem.Document, 0, len(vectors))
	for _, v := range vectors {
		if len(v.Values) != l.dims {
			return fmt.Errorf("vector %s has %d dimensions, index expects %d", v.ID, len(v.Values), l.dims)
		}
		// chromem normalizes in place
		values := append([]float32(nil), v.Values...)
		docs = append(docs, chromem.Document{
			ID: v.ID,
			Metadata: map[string]string{
				"filename":     v.Metadata.Filename,
				"space_id":     v.Metadata.SpaceID,
				"chunk_id":     strconv.Itoa(v.Metadata.ChunkID),
				"total_chunks": strconv.Itoa(v.Metadata.TotalChunks),
			},
			Embedding: values,
			Content:   v.Metadata.Text,
		})
	}
	if err := l.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("add to local index: %w", err)
	}
	return nil
}

// wheres expands f into chromem where clauses, which only support equality.
// A nil result means no filter.
func wheres(f Filter) []map[string]string {
	if len(f.SpaceIDs) == 0 {
		if f.Filename == "" {
			return []map[string]string{nil}
		}
		return []map[string]string{{"filename": f.Filename}}
	}
	out := make([]map[string]string, 0, len(f.SpaceIDs))
	for _, id := range f.SpaceIDs {
		w := map[string]string{"space_id": id}
		if f.Filename != "" {
			w["filename"] = f.Filename
		}
		out = append(out, w)
	}
	return out
}

func (l *Local) Query(ctx context.Context, req QueryRequest) ([]Match, error) {
	if req.TopK <= 0 {
		return nil, nil
	}
	total := l.collection.Count()
	if total == 0 {
		return nil, nil
	}
	n := min(req.TopK, total)

	var matches []Match
	for _, where := range wheres(req.Filter) {
		res, err := l.collection.QueryEmbedding(ctx, append([]float32(nil), req.Vector...), n, where, nil)
		if err != nil {
			return nil, fmt.Errorf("query local index: %w", err)
		}
		for _, r := range res {
			matches = append(matches, toMatch(r))
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > req.TopK {
		matches = matches[:req.TopK]
	}
	return matches, nil
}

func toMatch(r chromem.Result) Match {
	chunkID, _ := strconv.Atoi(r.Metadata["chunk_id"])
	total, _ := strconv.Atoi(r.Metadata["total_chunks"])
	return Match{
		ID:    r.ID,
		Score: float64(r.Similarity),
		Metadata: Metadata{
			Text:        r.Content,
			Filename:    r.Metadata["filename"],
			SpaceID:     r.Metadata["space_id"],
			ChunkID:     chunkID,
			TotalChunks: total,
		},
	}
}

func (l *Local) DeleteByFilter(ctx context.Context, f Filter) (int, error) {
	if len(f.SpaceIDs) == 0 && f.Filename == "" {
		return 0, errors.New("refusing to delete without a filter")
	}
	before := l.collection.Count()
	for _, where := range wheres(f) {
		if err := l.collection.Delete(ctx, where, nil); err != nil {
			return before - l.collection.Count(), fmt.Errorf("delete from local index: %w", err)
		}
	}
	return before - l.collection.Count(), nil
}

func (l *Local) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := l.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("delete from local index: %w", err)
	}
	return nil
}

func (l *Local) Stats(context.Context) (Stats, error) {
	n := l.collection.Count()
	return Stats{
		TotalVectors: int64(n),
		Dimension:    l.dims,
		Namespaces:   map[string]any{"": map[string]any{"vectorCount": n}},
	}, nil
}
