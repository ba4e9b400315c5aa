package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beecok/internal/vectorindex"
)

func upload(t *testing.T, e *env, spaceID, name, body string) {
	t.Helper()
	_, err := e.docs.Upload(context.Background(), e.userID, UploadInput{
		SpaceID: spaceID, Filename: name, Size: int64(len(body)), Content: strings.NewReader(body),
	})
	require.NoError(t, err)
}

func TestSpaceService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	sp, err := e.spaces.Create(ctx, e.userID, SpaceInput{Name: "  Research  ", Description: "papers", Color: "blue"})
	require.NoError(t, err)
	assert.Equal(t, "Research", sp.Name)
	assert.Equal(t, "blue", sp.Color)

	tests := []struct {
		name    string
		in      SpaceInput
		wantErr error
	}{
		{"blank", SpaceInput{Name: "   "}, ErrInvalidInput},
		{"too long", SpaceInput{Name: strings.Repeat("x", 101)}, ErrInvalidInput},
		{"duplicate", SpaceInput{Name: "Research"}, ErrDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.spaces.Create(ctx, e.userID, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err = e.spaces.Create(ctx, e.userID, SpaceInput{Name: strings.Repeat("é", 100)})
	assert.NoError(t, err)

	// names are unique per user only
	_, err = e.spaces.Create(ctx, e.otherID, SpaceInput{Name: "Research"})
	assert.NoError(t, err)

	var de *Error
	_, err = e.spaces.Create(ctx, e.userID, SpaceInput{Name: "Research"})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Space with name 'Research' already exists", de.Detail)
}

func TestSpaceService_ListGetUpdate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	a, err := e.spaces.Create(ctx, e.userID, SpaceInput{Name: "A"})
	require.NoError(t, err)
	b, err := e.spaces.Create(ctx, e.userID, SpaceInput{Name: "B"})
	require.NoError(t, err)
	upload(t, e, a.ID, "one.txt", "hello world from the first document")
	upload(t, e, a.ID, "two.txt", "second")

	list, err := e.spaces.List(ctx, e.userID)
	require.NoError(t, err)
	assert.Equal(t, 2, list.TotalSpaces)
	byName := map[string]int64{}
	for _, sp := range list.Spaces {
		byName[sp.Name] = sp.DocumentCount
	}
	assert.Equal(t, map[string]int64{"A": 2, "B": 0}, byName)

	got, err := e.spaces.Get(ctx, e.userID, a.ID)
	require.NoError(t, err)
	assert.Len(t, got.Documents, 2)
	assert.Equal(t, int64(len("hello world from the first document")+len("second")), got.TotalSizeBytes)

	_, err = e.spaces.Get(ctx, e.otherID, a.ID)
	assert.ErrorIs(t, err, ErrSpaceNotFound)

	name := "B"
	_, err = e.spaces.Update(ctx, e.userID, a.ID, SpaceUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrDuplicateName)

	// renaming to its own name is allowed
	_, err = e.spaces.Update(ctx, e.userID, b.ID, SpaceUpdate{Name: &name})
	require.NoError(t, err)

	desc := "updated"
	updated, err := e.spaces.Update(ctx, e.userID, a.ID, SpaceUpdate{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "A", updated.Name)
	assert.Equal(t, "updated", updated.Description)
	assert.Equal(t, int64(2), updated.DocumentCount)
	assert.False(t, updated.UpdatedAt.Before(a.UpdatedAt))
}

func TestSpaceService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	sp, err := e.spaces.Create(ctx, e.userID, SpaceInput{Name: "Doomed"})
	require.NoError(t, err)
	keep, err := e.spaces.Create(ctx, e.userID, SpaceInput{Name: "Kept"})
	require.NoError(t, err)

	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		upload(t, e, sp.ID, name, "contents of "+name+" about tides and moons")
	}
	upload(t, e, keep.ID, "a.txt", "unrelated survivor text")

	before, err := e.index.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5), before.TotalVectors)

	full, err := e.spaces.Get(ctx, e.userID, sp.ID)
	require.NoError(t, err)
	require.Len(t, full.Documents, 4)

	res, err := e.spaces.Delete(ctx, e.userID, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, res.DocumentsDeleted)
	assert.Equal(t, "Doomed", res.Name)

	_, err = e.spaces.Get(ctx, e.userID, sp.ID)
	assert.ErrorIs(t, err, ErrSpaceNotFound)

	after, err := e.index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after.TotalVectors)

	for _, d := range full.Documents {
		_, _, err := e.files.Get(ctx, d.StoragePath)
		assert.Error(t, err, d.StoragePath)
	}

	totals, err := e.store.Documents.UserTotals(ctx, e.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Count)

	matches, err := e.index.Query(ctx, vectorindex.QueryRequest{Vector: unitVector(), TopK: 10})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, keep.ID, matches[0].Metadata.SpaceID)

	_, err = e.spaces.Delete(ctx, e.userID, sp.ID)
	assert.ErrorIs(t, err, ErrSpaceNotFound)
}

func unitVector() []float32 {
	v := make([]float32, testDims)
	v[0] = 1
	return v
}
