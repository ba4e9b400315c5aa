package client

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultAttempts is the number of tries a Retrier makes when Attempts is unset.
const DefaultAttempts = 3

// Retrier retries an HTTP call on 5xx responses and transport errors. 4xx responses are
// returned on the first attempt. Between attempts it waits attempt × Backoff.
type Retrier struct {
	Attempts int
	Backoff  time.Duration
	// Sleep waits d or until ctx is done. Nil means a real timer.
	Sleep func(ctx context.Context, d time.Duration) error
	Log   *zap.Logger
}

// Do runs fn until it yields a response below 500 or the attempts are used up. The final
// failure is returned as a *NetworkError or, for a 5xx, an *APIError.
func (r Retrier) Do(ctx context.Context, fn func(context.Context) (*http.Response, error)) (*http.Response, error) {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	backoff := r.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := fn(ctx)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = &NetworkError{Err: err}
		case resp.StatusCode >= http.StatusInternalServerError:
			lastErr = decodeAPIError(resp)
		default:
			return resp, nil
		}
		if attempt == attempts {
			break
		}
		wait := time.Duration(attempt) * backoff
		log.Debug("http_retry",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(lastErr),
		)
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
