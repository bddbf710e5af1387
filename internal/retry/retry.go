// Package retry runs an operation under a Policy with an injectable sleeper,
// so retry behaviour is testable without a network or a wall clock.
package retry

import (
	"context"
	"time"
)

// Sleeper suspends the caller for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Policy struct {
	MaxAttempts int
	// Backoff returns the pause before the next attempt; attempt is 1-based and
	// refers to the attempt that just failed.
	Backoff func(attempt int, err error) time.Duration
	// Retryable decides whether err may be retried at all.
	Retryable func(err error) bool
}

// Do calls fn until it succeeds, returns a non-retryable error, MaxAttempts
// is reached or ctx is done. The last error is returned unchanged.
func Do(ctx context.Context, p Policy, sleep Sleeper, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	if sleep == nil {
		sleep = Sleep
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx, attempt); err == nil {
			return nil
		}
		// Chỉ ctx của caller quyết định việc dừng; timeout của http.Client vẫn được retry
		if ctx.Err() != nil {
			return err
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		var d time.Duration
		if p.Backoff != nil {
			d = p.Backoff(attempt, err)
		}
		if d > 0 {
			if serr := sleep(ctx, d); serr != nil {
				return serr
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

// Linear returns base × attempt.
func Linear(base time.Duration) func(int, error) time.Duration {
	return func(attempt int, _ error) time.Duration {
		return base * time.Duration(attempt)
	}
}
