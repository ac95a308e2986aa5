package httputil

import (
	"context"
	"errors"
	"time"
)

// Backoff bounds. Delays double per attempt but never exceed the cap, so a
// slow catalog API cannot stall an export for minutes.
const (
	defaultAttempts = 3
	defaultDelay    = time.Second
	maxDelay        = 8 * time.Second
)

// RetryableError marks an error as transient. Only errors wrapped in this
// type (network failures, 5xx responses) are retried; everything else is
// treated as permanent and returned to the caller immediately.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn up to attempts times, sleeping delay between tries and
// doubling it after each failure up to maxDelay. It returns nil on the
// first success, the error itself when it is not retryable, ctx.Err() when
// the context ends mid-backoff, and the last error otherwise.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.As(err, new(*RetryableError)) {
			return err
		}
		lastErr = err

		if attempt == attempts {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay *= 2; delay > maxDelay {
			delay = maxDelay
		}
	}
}

// RetryWithBackoff runs fn with the default retry policy.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, defaultAttempts, defaultDelay, fn)
}
