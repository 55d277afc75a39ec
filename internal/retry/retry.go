// Package retry re-runs an operation on transient failure with linearly
// increasing delay: Delay, 2*Delay, 3*Delay, ... capped at MaxDelay.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")
	ErrContextCancelled    = errors.New("context cancelled during retry")
)

type Config struct {
	// MaxAttempts counts the first call.
	MaxAttempts int
	Delay       time.Duration
	MaxDelay    time.Duration
	IsRetryable func(error) bool
	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Hinter is implemented by errors that know how long the server asked us
// to wait (HTTP Retry-After).
type Hinter interface {
	RetryAfter() time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Delay:       time.Second,
		MaxDelay:    30 * time.Second,
		IsRetryable: func(err error) bool { return err != nil },
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. fn receives the 1-based attempt number.
func Do(ctx context.Context, cfg Config, fn func(attempt int) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.IsRetryable == nil {
		cfg.IsRetryable = func(err error) bool { return err != nil }
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if !cfg.IsRetryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		wait := Backoff(cfg, attempt, err)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		case <-t.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxAttemptsExceeded, cfg.MaxAttempts, lastErr)
}

// Backoff is the wait after the given failed attempt: Delay*attempt, raised
// to any server hint, capped at MaxDelay.
func Backoff(cfg Config, attempt int, err error) time.Duration {
	wait := cfg.Delay * time.Duration(attempt)

	var h Hinter
	if errors.As(err, &h) {
		if ra := h.RetryAfter(); ra > wait {
			wait = ra
		}
	}
	if cfg.MaxDelay > 0 && wait > cfg.MaxDelay {
		wait = cfg.MaxDelay
	}
	return wait
}
