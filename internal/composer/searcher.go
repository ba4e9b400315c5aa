package composer

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"beecok/internal/client"
	"beecok/internal/model"
	"beecok/internal/notify"
	"beecok/internal/results"
)

var (
	ErrEmptyQuery = errors.New("composer: empty query")
	// ErrStale is returned when a newer search was submitted before this one finished.
	ErrStale = errors.New("composer: superseded by a newer search")
)

// SearchFailedMessage is shown when the response could not be used at all.
const SearchFailedMessage = "Search failed. Please try again."

// Backend is the one call the searcher makes.
type Backend interface {
	Search(ctx context.Context, req client.SearchRequest) (*model.SearchResult, error)
}

// Searcher submits composed queries and writes successful results into a results.View.
// Each submission carries a sequence number; a response that arrives after a newer
// submission is discarded.
type Searcher struct {
	backend Backend
	view    *results.View
	notes   *notify.Notifier
	log     *zap.Logger

	mu      sync.Mutex
	seq     uint64
	pending int
}

func NewSearcher(backend Backend, view *results.View, notes *notify.Notifier, log *zap.Logger) *Searcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{backend: backend, view: view, notes: notes, log: log}
}

// Pending reports whether a search is in flight. Callers disable submit while it is.
func (s *Searcher) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// Request builds the request for the composer's current state without sending it.
func Request(c *Composer, maxResults int) (client.SearchRequest, error) {
	q := c.Query()
	if q == "" {
		return client.SearchRequest{}, ErrEmptyQuery
	}
	if err := client.ValidateMaxResults(maxResults); err != nil {
		return client.SearchRequest{}, err
	}
	req := client.SearchRequest{Query: q, MaxResults: maxResults}
	if sc := c.Scope(); sc != nil {
		req.SpaceID = sc.ID
	}
	return req, nil
}

// Submit sends exactly one search for the composer's state. An empty query fails without
// a call. On failure the previous results stay and an error notification is raised.
func (s *Searcher) Submit(ctx context.Context, c *Composer, maxResults int) (*model.SearchResult, error) {
	req, err := Request(c, maxResults)
	if err != nil {
		if !errors.Is(err, ErrEmptyQuery) {
			s.notes.Error(client.Describe(err))
		}
		return nil, err
	}
	return s.Send(ctx, req)
}

// Send is Submit for a request built earlier, so a UI can build it on its own goroutine
// and send it from another.
func (s *Searcher) Send(ctx context.Context, req client.SearchRequest) (*model.SearchResult, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.pending++
	s.mu.Unlock()

	res, err := s.backend.Search(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if seq != s.seq {
		s.log.Debug("search_discarded", zap.Uint64("seq", seq), zap.Uint64("latest", s.seq))
		return nil, ErrStale
	}
	if err != nil {
		s.notes.Error(failureMessage(err))
		return nil, err
	}
	s.view.Replace(res)
	return res, nil
}

func failureMessage(err error) string {
	var (
		netErr *client.NetworkError
		apiErr *client.APIError
	)
	switch {
	case errors.As(err, &netErr):
		return client.NetworkMessage
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, context.Canceled):
		return "Search cancelled."
	default:
		return SearchFailedMessage
	}
}
