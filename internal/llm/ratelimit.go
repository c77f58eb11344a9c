package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"pdfsearch/internal/domain"
)

// RateLimited delays calls so the inner generator sees at most the configured request rate.
type RateLimited struct {
	inner   Generator
	limiter *rate.Limiter
}

// NewRateLimited allows requestsPerMinute calls with the given burst.
// A non-positive rate returns inner unchanged.
func NewRateLimited(inner Generator, requestsPerMinute, burst int) Generator {
	if requestsPerMinute <= 0 {
		return inner
	}
	if burst <= 0 {
		burst = 1
	}
	every := time.Minute / time.Duration(requestsPerMinute)
	return &RateLimited{inner: inner, limiter: rate.NewLimiter(rate.Every(every), burst)}
}

// Name returns the underlying generator name.
func (r *RateLimited) Name() string { return r.inner.Name() }

// Complete waits for a token, then delegates.
func (r *RateLimited) Complete(ctx context.Context, system, user string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit wait: %w", domain.ErrGenerationFailure, err)
	}
	return r.inner.Complete(ctx, system, user)
}
