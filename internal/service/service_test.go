package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"beecok/internal/chunker"
	"beecok/internal/docstore"
	"beecok/internal/embedding"
	"beecok/internal/extract"
	"beecok/internal/repository"
	mongorepo "beecok/internal/repository/mongo"
	"beecok/internal/storage"
	"beecok/internal/vectorindex"
)

const testDims = 64

type stubGenerator struct {
	prompts []string
	answer  string
	err     error
	pingErr error
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.answer, g.err
}

func (g *stubGenerator) Ping(context.Context) error { return g.pingErr }

// fakeIndex returns canned matches and records what it was asked.
type fakeIndex struct {
	matches  []vectorindex.Match
	queries  []vectorindex.QueryRequest
	deletes  []vectorindex.Filter
	dropped  [][]string
	upserted []string
	upserts  int
	queryErr error
	stats    vectorindex.Stats
	statsErr error
}

func (f *fakeIndex) Upsert(_ context.Context, v []vectorindex.Vector) error {
	f.upserts += len(v)
	for _, vec := range v {
		f.upserted = append(f.upserted, vec.ID)
	}
	return nil
}

func (f *fakeIndex) Query(_ context.Context, req vectorindex.QueryRequest) ([]vectorindex.Match, error) {
	f.queries = append(f.queries, req)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches[:min(req.TopK, len(f.matches))], nil
}

func (f *fakeIndex) DeleteByFilter(_ context.Context, flt vectorindex.Filter) (int, error) {
	f.deletes = append(f.deletes, flt)
	return 0, nil
}

func (f *fakeIndex) DeleteByIDs(_ context.Context, ids []string) error {
	f.dropped = append(f.dropped, ids)
	return nil
}

func (f *fakeIndex) Stats(context.Context) (vectorindex.Stats, error) { return f.stats, f.statsErr }
func (f *fakeIndex) Name() string                                    { return "fake" }

// env wires every service over the in-memory store, a temp-dir file store and the
// local vector index.
type env struct {
	store   repository.Store
	files   storage.Storage
	index   vectorindex.Index
	indexer *Indexer
	gen     *stubGenerator
	spaces  SpaceService
	docs    DocumentService
	search  SearchService
	chats   ChatService
	system  SystemService
	userID  string
	otherID string
}

func newEnv(t *testing.T, index vectorindex.Index) *env {
	t.Helper()
	ctx := context.Background()
	db := docstore.NewMemory()
	require.NoError(t, docstore.EnsureIndexes(ctx, db))
	store := mongorepo.NewStore(db)

	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	if index == nil {
		index, err = vectorindex.NewLocal("", testDims)
		require.NoError(t, err)
	}

	gen := &stubGenerator{answer: "generated answer"}
	indexer := NewIndexer(chunker.New(120, 20), embedding.NewHash(testDims), index, nil)
	search := NewSearchService(store.Spaces, store.Documents, indexer, gen, 10, nil)
	return &env{
		store:   store,
		files:   files,
		index:   index,
		indexer: indexer,
		gen:     gen,
		spaces:  NewSpaceService(store.Spaces, store.Documents, files, indexer, nil),
		docs:    NewDocumentService(store.Spaces, store.Documents, files, extract.NewExtractor(), indexer, nil),
		search:  search,
		chats:   NewChatService(store.Chats, store.Messages, store.Spaces, search, nil),
		system:  NewSystemService(store, indexer, gen),
		userID:  "11111111-1111-1111-1111-111111111111",
		otherID: "22222222-2222-2222-2222-222222222222",
	}
}
