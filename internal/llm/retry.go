package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"pdfsearch/internal/domain"
)

// RetryConfig configures retry behavior for generation calls.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts (0 = no retries)
	RetryDelay time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries (caps exponential backoff)
	Timeout    time.Duration // Per-request timeout
}

// DefaultRetryConfig returns the defaults used by the CLI.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelay: time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    60 * time.Second,
	}
}

// Retrying wraps a Generator with per-attempt timeouts and exponential backoff.
// Every error it returns wraps domain.ErrGenerationTimeout or domain.ErrGenerationFailure.
type Retrying struct {
	inner  Generator
	config RetryConfig
}

// NewRetrying wraps inner. Zero config fields fall back to DefaultRetryConfig.
func NewRetrying(inner Generator, config RetryConfig) *Retrying {
	def := DefaultRetryConfig()
	if config.RetryDelay <= 0 {
		config.RetryDelay = def.RetryDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = def.MaxDelay
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Retrying{inner: inner, config: config}
}

// Name returns the underlying generator name.
func (r *Retrying) Name() string { return r.inner.Name() }

// Complete sends the prompt with timeout and retry logic.
func (r *Retrying) Complete(ctx context.Context, system, user string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", classify(ctx.Err())
			case <-time.After(r.backoff(attempt)):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
		out, err := r.inner.Complete(attemptCtx, system, user)
		cancel()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", classify(ctx.Err())
		}
		if !isRetryable(err) {
			return "", classify(err)
		}
	}
	return "", fmt.Errorf("max retries (%d) exceeded: %w", r.config.MaxRetries, classify(lastErr))
}

// backoff returns RetryDelay * 2^(attempt-1), capped at MaxDelay.
func (r *Retrying) backoff(attempt int) time.Duration {
	delay := r.config.RetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay > r.config.MaxDelay {
			return r.config.MaxDelay
		}
	}
	return delay
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.Code == http.StatusTooManyRequests || status.Code >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func classify(err error) error {
	if errors.Is(err, domain.ErrGenerationTimeout) || errors.Is(err, domain.ErrGenerationFailure) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", domain.ErrGenerationTimeout, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
}
