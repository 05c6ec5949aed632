package common

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryableFunc is the unit of work passed to Do. A nil error stops retrying.
type RetryableFunc func() error

// retryConfig holds the backoff parameters.
type retryConfig struct {
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

// Option is a functional option for configuring retry behavior.
type Option func(*retryConfig)

// WithMaxRetries sets the maximum number of retry attempts (default 3).
func WithMaxRetries(n int) Option {
	return func(c *retryConfig) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithInitialDelay sets the delay before the first retry (default 1s).
func WithInitialDelay(d time.Duration) Option {
	return func(c *retryConfig) {
		if d > 0 {
			c.initialDelay = d
		}
	}
}

// WithMaxDelay caps the delay between retries (default 30s).
func WithMaxDelay(d time.Duration) Option {
	return func(c *retryConfig) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// WithMultiplier sets the exponential backoff multiplier (default 2.0).
func WithMultiplier(m float64) Option {
	return func(c *retryConfig) {
		if m > 0 {
			c.multiplier = m
		}
	}
}

// Do executes fn with exponential backoff. The first attempt runs
// immediately; each retry waits initialDelay * multiplier^(n-1), capped at
// maxDelay. Context cancellation aborts both the wait and further attempts.
func Do(ctx context.Context, fn RetryableFunc, opts ...Option) error {
	if fn == nil {
		return errors.New("retry: function cannot be nil")
	}

	cfg := &retryConfig{
		maxRetries:   3,
		initialDelay: 1 * time.Second,
		maxDelay:     30 * time.Second,
		multiplier:   2.0,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoffDelay(attempt, cfg))
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry aborted during backoff (attempt %d/%d): %w", attempt, cfg.maxRetries, ctx.Err())
			case <-timer.C:
			}
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("retry failed after %d attempts: %w", cfg.maxRetries+1, lastErr)
}

// backoffDelay computes the wait before the given retry attempt (1-based).
func backoffDelay(attempt int, cfg *retryConfig) time.Duration {
	delay := float64(cfg.initialDelay) * math.Pow(cfg.multiplier, float64(attempt-1))
	if time.Duration(delay) > cfg.maxDelay {
		return cfg.maxDelay
	}
	return time.Duration(delay)
}
