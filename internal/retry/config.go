// Package retry runs an operation a bounded number of times with a backoff
// between failed attempts.
package retry

import (
	"math"
	"math/rand"
	"time"
)

// Config holds retry configuration parameters.
type Config struct {
	// MaxAttempts is the maximum number of attempts (default: 2).
	// The initial request counts as attempt 1.
	MaxAttempts int

	// InitialDelay is the delay before the first retry (default: 1s).
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries. Zero means no cap.
	MaxDelay time.Duration

	// Multiplier grows the delay between consecutive retries (default: 1,
	// a fixed delay). Values below 1 are treated as 1.
	Multiplier float64

	// Jitter adds randomness to the delay (default: 0).
	// Delay is multiplied by (1 + random(-jitter, +jitter)).
	Jitter float64

	// HonorRetryAfter stretches a wait to the server's Retry-After hint,
	// still capped by MaxDelay. Off by default so a wait is never longer
	// than Delay.
	HonorRetryAfter bool

	// RetryIf decides whether a failed attempt is retried. Nil retries
	// transient errors only.
	RetryIf func(error) bool
}

// DefaultConfig returns the per-backend budget used for generation calls:
// two attempts one second apart.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  2,
		InitialDelay: time.Second,
		Multiplier:   1,
	}
}

// Fixed returns a configuration of attempts tries separated by delay.
func Fixed(attempts int, delay time.Duration) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: delay,
		Multiplier:   1,
	}
}

// Disabled returns a configuration that disables retries (single attempt).
func Disabled() Config {
	return Config{MaxAttempts: 1}
}

// Delay calculates the delay for a given attempt number (0-indexed).
// Formula: min(maxDelay, initialDelay * multiplier^attempt) * (1 + jitter)
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	mult := c.Multiplier
	if mult < 1 {
		mult = 1
	}

	delay := float64(c.InitialDelay) * math.Pow(mult, float64(attempt))
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}

	if c.Jitter > 0 {
		jitterFactor := 1.0 + (rand.Float64()*2-1)*c.Jitter
		delay *= jitterFactor
	}

	return time.Duration(delay)
}

// wait returns the pause after a failed attempt (0-indexed).
func (c Config) wait(attempt int, err error) time.Duration {
	delay := c.Delay(attempt)
	if !c.HonorRetryAfter {
		return delay
	}
	if hint := retryAfterFromError(err); hint > delay {
		delay = hint
	}
	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

func (c Config) retryable(err error) bool {
	if c.RetryIf != nil {
		return c.RetryIf(err)
	}
	return IsTransient(err)
}
