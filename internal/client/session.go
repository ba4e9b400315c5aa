package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"beecok/internal/model"
)

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a JSON file readable only by its owner.
type FileTokenStore struct {
	Path string
}

type credentials struct {
	AccessToken string `json:"access_token"`
}

// DefaultCredentialsPath is ~/.beecok/credentials.json.
func DefaultCredentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".beecok", "credentials.json"), nil
}

// Load returns "" when no token has been stored.
func (s FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read credentials: %w", err)
	}
	var c credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("parse credentials: %w", err)
	}
	return c.AccessToken, nil
}

func (s FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}
	data, err := json.MarshalIndent(credentials{AccessToken: token}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func (s FileTokenStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// MemoryTokenStore is a TokenStore that forgets everything on exit.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error { return s.Save("") }

// Session is the authentication state shared by every network-calling component.
// It starts anonymous, becomes authenticated on login, register or a stored token the
// backend accepts, and returns to anonymous on logout or any 401.
type Session struct {
	mu    sync.RWMutex
	store TokenStore
	token string
	user  *model.User
}

// NewSession loads any stored token. The session stays anonymous until Restore confirms it.
func NewSession(store TokenStore) (*Session, error) {
	token, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{store: store, token: token}, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// SetAuth records a successful login and persists the token.
func (s *Session) SetAuth(token string, user *model.User) error {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return s.store.Save(token)
}

// Clear drops the token from memory and from the store.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return s.store.Clear()
}

type userFetcher interface {
	Me(ctx context.Context) (*model.User, error)
}

// Restore validates a stored token against the backend. A rejected token clears the
// session; a transport failure leaves the token in place for a later attempt.
func (s *Session) Restore(ctx context.Context, c userFetcher) (bool, error) {
	if s.Token() == "" {
		return false, nil
	}
	user, err := c.Me(ctx)
	if err != nil {
		if IsUnauthorized(err) {
			return false, s.Clear()
		}
		return false, err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return true, nil
}
