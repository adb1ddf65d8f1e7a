// Package ratelimit paces requests to embedding and completion providers.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

// Ensure Limiter implements the interface.
var _ driven.RateLimiter = (*Limiter)(nil)

// Config holds rate limiting configuration for a provider.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
	// DefaultBackoff applies when a 429 carries no Retry-After.
	DefaultBackoff time.Duration
}

// DefaultConfigs provides conservative defaults per provider.
var DefaultConfigs = map[string]Config{
	"openai":    {RequestsPerSecond: 2.0, BurstSize: 1, DefaultBackoff: 20 * time.Second},
	"anthropic": {RequestsPerSecond: 1.0, BurstSize: 1, DefaultBackoff: 30 * time.Second},
	"ollama":    {RequestsPerSecond: 10.0, BurstSize: 2, DefaultBackoff: 5 * time.Second},
}

// fallback applies to providers without an entry in DefaultConfigs.
var fallback = Config{RequestsPerSecond: 2.0, BurstSize: 1, DefaultBackoff: 30 * time.Second}

// Limiter is a token bucket with a shared backoff window.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
	now     func() time.Time
}

// ForProvider creates a limiter with the provider's defaults.
func ForProvider(provider string) *Limiter {
	cfg, ok := DefaultConfigs[provider]
	if !ok {
		cfg = fallback
	}
	return New(cfg)
}

// New creates a limiter with custom configuration.
func New(cfg Config) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = fallback.RequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	if cfg.DefaultBackoff <= 0 {
		cfg.DefaultBackoff = fallback.DefaultBackoff
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		backoff: cfg.DefaultBackoff,
		now:     time.Now,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := retryAt.Sub(l.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// RecordRateLimitError records a rate limit response and sets a backoff
// period. A later deadline is never shortened by an earlier one.
func (l *Limiter) RecordRateLimitError(retryAfterSeconds int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	backoff := l.backoff
	if retryAfterSeconds > 0 {
		backoff = time.Duration(retryAfterSeconds) * time.Second
	}

	if until := l.now().Add(backoff); until.After(l.retryAt) {
		l.retryAt = until
	}
}

// Allow checks if a request can be made immediately without blocking.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if l.now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}

// RetryAt returns the end of the current backoff window.
func (l *Limiter) RetryAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.retryAt
}
