package shared

import (
	"context"
	"errors"
	"time"
)

// Default retry parameters applied to collaborator calls
const (
	DefaultMaxAttempts = 3
	DefaultBaseBackoff = 1 * time.Second
	DefaultMaxBackoff  = 30 * time.Second
)

// RetryPolicy is a bounded exponential-backoff policy. It is applied
// uniformly to every side-effecting collaborator call: classifier scoring,
// notification sends, contact scheduling.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DefaultRetryPolicy returns the standard policy
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseBackoff: DefaultBaseBackoff,
		MaxBackoff:  DefaultMaxBackoff,
	}
}

// BackoffFor returns the delay before the given attempt (1-based).
// Exponential doubling: base, 2*base, 4*base, ... capped at MaxBackoff.
func (p RetryPolicy) BackoffFor(attempt int) time.Duration {
	if attempt <= 1 {
		return p.BaseBackoff
	}
	backoff := p.BaseBackoff * time.Duration(1<<uint(attempt-1))
	if backoff > p.MaxBackoff || backoff <= 0 {
		return p.MaxBackoff
	}
	return backoff
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not retryable. Do returns the wrapped error
// immediately instead of burning the remaining attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn up to MaxAttempts times, sleeping the backoff between attempts.
// The sleep honors context cancellation. The last error is returned when all
// attempts fail; an error marked Permanent stops the loop at once.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if attempt == p.MaxAttempts {
			break
		}
		timer := time.NewTimer(p.BackoffFor(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
