package ai

import (
	"context"
	"errors"
	"time"
)

// RetryConfig configures retry behavior for analysis-service calls.
type RetryConfig struct {
	// MaxRetries is the number of retries after the initial attempt. Default: 3.
	MaxRetries int
	// BaseDelay is the backoff for the first retry. Default: 1s.
	BaseDelay time.Duration
	// MaxDelay caps the backoff between retries. Default: 30s.
	MaxDelay time.Duration
}

// DefaultRetryConfig returns the deployment defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
	}
}

func (c RetryConfig) withDefaults() RetryConfig {
	d := DefaultRetryConfig()
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = d.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = d.MaxDelay
	}
	return c
}

// Retry invokes fn up to MaxRetries+1 times, backing off exponentially
// between attempts: min(2^attempt * BaseDelay, MaxDelay). Only errors
// classified retryable by IsRetryable trigger another attempt; a
// RateLimitError's retry-after hint stretches the wait when it exceeds the
// computed backoff. On exhaustion the last error is surfaced unchanged.
// The backoff wait is cancellable through ctx.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		delay := backoffDelay(attempt, cfg)
		var rle *RateLimitError
		if errors.As(err, &rle) && rle.RetryAfter > delay {
			delay = rle.RetryAfter
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

// backoffDelay computes min(2^attempt * base, max) for a zero-based attempt.
func backoffDelay(attempt int, cfg RetryConfig) time.Duration {
	delay := cfg.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= cfg.MaxDelay {
			return cfg.MaxDelay
		}
	}
	if delay > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return delay
}
