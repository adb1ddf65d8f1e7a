package driven

import "context"

// RateLimiter paces requests to a rate-limited provider.
type RateLimiter interface {
	// Wait blocks until a request may be sent or ctx is done.
	Wait(ctx context.Context) error

	// RecordRateLimitError pauses all requests for the provider's
	// requested backoff. Zero or negative values use a default.
	RecordRateLimitError(retryAfterSeconds int)
}
