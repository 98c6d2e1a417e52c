package retry

import (
	"context"
	"errors"
	"time"

	nb "github.com/spetersoncode/newsbrief"
)

// retryAfterFromError extracts the server suggested delay from a
// CategorizedError, or 0.
func retryAfterFromError(err error) time.Duration {
	var ce nb.CategorizedError
	if errors.As(err, &ce) {
		return ce.RetryAfter()
	}
	return 0
}

// Do executes fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. fn receives the 1-indexed attempt number.
// Context cancellation is honored during backoff waits.
// Returns the result on success, or the last error if all attempts fail.
func Do[T any](ctx context.Context, cfg Config, fn func(attempt int) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(attempt + 1)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !cfg.retryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxAttempts-1 {
			delay := cfg.wait(attempt, err)
			if delay <= 0 {
				continue
			}

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return zero, lastErr
}
