// Package retry re-runs an operation that failed with a transient error,
// backing off exponentially with jitter between attempts.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/lingo/internal/apperr"
)

// Config configures retry behavior for transient failures.
type Config struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig suits short store transactions.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitialWait: 20 * time.Millisecond,
		MaxWait:     250 * time.Millisecond,
		Multiplier:  2,
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. onRetry, if set, is called before each wait.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error, onRetry func(attempt int, err error)) error {
	attempts := max(cfg.MaxAttempts, 1)

	var lastErr error
	for attempt := range attempts {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return err
		}

		// Last attempt, don't sleep.
		if attempt == attempts-1 {
			break
		}

		if onRetry != nil {
			onRetry(attempt+1, err)
		}

		select {
		case <-ctx.Done():
			return apperr.FromContext("retry wait", ctx.Err())
		case <-time.After(Backoff(cfg, attempt)):
		}
	}
	return lastErr
}

func shouldRetry(err error) bool {
	// Context errors of the caller are never retried.
	if errors.Is(err, context.Canceled) {
		return false
	}
	return apperr.Retryable(err)
}

// Backoff computes the wait before retry number attempt+1.
func Backoff(cfg Config, attempt int) time.Duration {
	mult := cfg.Multiplier
	if mult < 1 {
		mult = 1
	}
	wait := float64(cfg.InitialWait) * math.Pow(mult, float64(attempt))
	if cfg.MaxWait > 0 && wait > float64(cfg.MaxWait) {
		wait = float64(cfg.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
