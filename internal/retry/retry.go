// Package retry implements the bounded-retry contract used for best-effort
// side effects: at most N attempts, growing backoff, each attempt bounded by
// a wall-clock timeout, and a way to mark a failure as not worth retrying.
package retry

import (
	"context"
	"errors"
	"time"
)

type Policy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	BackoffMultiplier int
	PerAttemptTimeout time.Duration
}

// DefaultUpload matches the receipt-upload contract: three attempts,
// 500ms backoff doubling, 10s per attempt.
var DefaultUpload = Policy{
	MaxAttempts:       3,
	InitialBackoff:    500 * time.Millisecond,
	BackoffMultiplier: 2,
	PerAttemptTimeout: 10 * time.Second,
}

// DefaultNotify matches the notification-job contract: three attempts,
// exponential backoff starting at 2s.
var DefaultNotify = Policy{
	MaxAttempts:       3,
	InitialBackoff:    2 * time.Second,
	BackoffMultiplier: 2,
	PerAttemptTimeout: 15 * time.Second,
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps an error so Do gives up immediately instead of retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Backoff returns the delay before the given 1-based attempt is retried.
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		d *= time.Duration(p.BackoffMultiplier)
	}
	return d
}

// Do runs fn until it succeeds, returns a permanent error, exhausts the
// attempt budget, or the context is cancelled. The returned error is the one
// from the last attempt.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if p.PerAttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.PerAttemptTimeout)
		}
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if IsPermanent(err) {
			var pe *permanentError
			errors.As(err, &pe)
			return pe.err
		}
		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-time.After(p.Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
