package client

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beecok/internal/model"
)

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	store := FileTokenStore{Path: path}

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("tok"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"tok"}`, string(data))

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

type fakeFetcher struct {
	user *model.User
	err  error
}

func (f fakeFetcher) Me(context.Context) (*model.User, error) { return f.user, f.err }

func TestSession_Lifecycle(t *testing.T) {
	store := &MemoryTokenStore{}
	require.NoError(t, store.Save("stored"))

	s, err := NewSession(store)
	require.NoError(t, err)
	assert.Equal(t, "stored", s.Token())
	assert.False(t, s.IsAuthenticated(), "a stored token is unconfirmed")

	ok, err := s.Restore(context.Background(), fakeFetcher{user: &model.User{Username: "a"}})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "a", s.User().Username)

	require.NoError(t, s.Clear())
	assert.False(t, s.IsAuthenticated())
	token, _ := store.Load()
	assert.Empty(t, token)
}

func TestSession_Restore(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		fetcher   fakeFetcher
		wantOK    bool
		wantErr   bool
		wantToken string
	}{
		{name: "no token", wantToken: ""},
		{name: "rejected token", stored: "old", fetcher: fakeFetcher{err: &APIError{Status: http.StatusUnauthorized}}, wantToken: ""},
		{name: "server unreachable", stored: "old", fetcher: fakeFetcher{err: &NetworkError{Err: errors.New("refused")}}, wantErr: true, wantToken: "old"},
		{name: "accepted", stored: "good", fetcher: fakeFetcher{user: &model.User{ID: "1"}}, wantOK: true, wantToken: "good"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MemoryTokenStore{}
			require.NoError(t, store.Save(tt.stored))
			s, err := NewSession(store)
			require.NoError(t, err)

			ok, err := s.Restore(context.Background(), tt.fetcher)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOK, s.IsAuthenticated())
			assert.Equal(t, tt.wantToken, s.Token())
		})
	}
}
