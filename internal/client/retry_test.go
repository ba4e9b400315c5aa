package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

// scripted returns the next canned outcome on every call.
func scripted(calls *int, outcomes ...func() (*http.Response, error)) func(context.Context) (*http.Response, error) {
	return func(context.Context) (*http.Response, error) {
		o := outcomes[*calls]
		*calls++
		return o()
	}
}

func status(code int, body string) func() (*http.Response, error) {
	return func() (*http.Response, error) { return response(code, body), nil }
}

func TestRetrier_RecoversAfterServerErrors(t *testing.T) {
	s := &recordingSleeper{}
	var calls int
	r := Retrier{Sleep: s.sleep}

	resp, err := r.Do(context.Background(), scripted(&calls,
		status(500, `{"detail":"boom"}`),
		status(500, `{"detail":"boom"}`),
		status(200, `{"ok":true}`),
	))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, `{"ok":true}`, string(body))
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, s.waits)
}

func TestRetrier_ClientErrorIsNotRetried(t *testing.T) {
	s := &recordingSleeper{}
	var calls int
	r := Retrier{Sleep: s.sleep}

	resp, err := r.Do(context.Background(), scripted(&calls, status(404, `{"detail":"Space not found"}`)))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, calls)
	assert.Empty(t, s.waits)
}

func TestRetrier_GivesUp(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		s := &recordingSleeper{}
		var calls int
		r := Retrier{Sleep: s.sleep}

		_, err := r.Do(context.Background(), scripted(&calls,
			status(503, `{"detail":"a"}`),
			status(503, `{"detail":"b"}`),
			status(502, `{"detail":"Search error: index down"}`),
		))
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 502, apiErr.Status)
		assert.Equal(t, "Search error: index down", apiErr.Detail)
		assert.Equal(t, 3, calls)
		assert.Len(t, s.waits, 2)
	})

	t.Run("transport error", func(t *testing.T) {
		s := &recordingSleeper{}
		var calls int
		r := Retrier{Attempts: 2, Sleep: s.sleep}
		refused := func() (*http.Response, error) { return nil, errors.New("connection refused") }

		_, err := r.Do(context.Background(), scripted(&calls, refused, refused))
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Contains(t, netErr.Error(), "connection refused")
		assert.Equal(t, 2, calls)
		assert.Equal(t, []time.Duration{time.Second}, s.waits)
	})
}

func TestRetrier_ContextCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	r := Retrier{Sleep: func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}}

	_, err := r.Do(ctx, scripted(&calls, status(500, ""), status(200, "")))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
