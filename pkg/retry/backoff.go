package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Backoff is a bounded exponential retry policy.
//
// The wait before attempt n (n >= 2) is BaseDelay * Multiplier^(n-2), capped at
// MaxDelay. There is never a wait before the first attempt nor after the last.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration

	// Sleep waits for d or until ctx is done. Defaults to a timer based wait.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is invoked after a failed attempt that will be retried.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Default mirrors the generation pipeline policy: 3 attempts, 2s doubling, 10s cap.
func Default() Backoff {
	return Backoff{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2,
		MaxDelay:    10 * time.Second,
	}
}

// Delay returns the wait applied before the given attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt <= 1 || b.BaseDelay <= 0 {
		return 0
	}
	mult := b.Multiplier
	if mult <= 0 {
		mult = 2
	}
	delay := float64(b.BaseDelay) * math.Pow(mult, float64(attempt-2))
	if b.MaxDelay > 0 && delay > float64(b.MaxDelay) {
		return b.MaxDelay
	}
	if delay > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(delay)
}

// Attempts returns the effective attempt budget.
func (b Backoff) Attempts() int {
	if b.MaxAttempts <= 0 {
		return 1
	}
	return b.MaxAttempts
}

// Do runs fn until it succeeds, returns a Permanent error, or the attempt
// budget is spent. The last error is returned unchanged.
func (b Backoff) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	sleep := b.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	attempts := b.Attempts()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := b.Delay(attempt)
			if b.OnRetry != nil {
				b.OnRetry(attempt-1, delay, lastErr)
			}
			if err := sleep(ctx, delay); err != nil {
				return fmt.Errorf("retry aborted before attempt %d: %w (last error: %v)", attempt, err, lastErr)
			}
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err
	}
	return lastErr
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
