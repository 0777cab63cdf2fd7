package provider

import (
	"context"
	"fmt"
	"time"
)

// Retry defaults shared by every provider.
const (
	DefaultMaxRetries    = 3
	DefaultInitialDelay  = 2 * time.Second
	DefaultBackoffFactor = 2.0
	DefaultTimeout       = 30 * time.Second
)

// backoff runs an operation with exponential backoff between retryable failures.
type backoff struct {
	maxRetries   int
	initialDelay time.Duration
	factor       float64
}

// newBackoff builds a retry policy. maxRetries of 0 makes a single attempt;
// a negative count takes DefaultMaxRetries.
func newBackoff(maxRetries int, initialDelay time.Duration, factor float64) backoff {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}
	if factor <= 0 {
		factor = DefaultBackoffFactor
	}
	return backoff{maxRetries: maxRetries, initialDelay: initialDelay, factor: factor}
}

// do executes fn until it succeeds, returns a non-retryable error, or the
// retry budget is spent.
func (b backoff) do(ctx context.Context, fn func() error, retryable func(error) bool) error {
	delay := b.initialDelay
	var lastErr error

	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !retryable(lastErr) {
			return lastErr
		}

		if attempt < b.maxRetries {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
				delay = time.Duration(float64(delay) * b.factor)
			}
		}
	}

	return fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}
