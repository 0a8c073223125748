// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github-activity-connector/internal/apperrors"
)

const rateLimitKeyPrefix = "rate_limit:"

// Limiter enforces a fixed-window request quota per username. All state
// lives in Redis so multiple service instances share the same counters; the
// INCR primitive makes concurrent checks for one user lose no counts.
//
// Known imprecision, accepted by policy: a client can burst up to twice the
// limit across a window boundary, and the EXPIRE after the first INCR of a
// window is a separate command, leaving a brief moment where the key has no
// TTL. Neither resets an in-progress window's count.
type Limiter struct {
	rdb         *redis.Client
	logger      *slog.Logger
	maxRequests int
	window      time.Duration
}

// NewLimiter creates a Limiter allowing maxRequests per window per user.
func NewLimiter(rdb *redis.Client, logger *slog.Logger, maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		rdb:         rdb,
		logger:      logger,
		maxRequests: maxRequests,
		window:      window,
	}
}

// Check charges one request against username's window. It returns nil to
// allow, or an *apperrors.RateLimitError carrying a retry-after hint to
// deny. If the counter store is unreachable the request is allowed: an
// infrastructure outage must not become a denial of service, so store
// errors are logged and swallowed here.
func (l *Limiter) Check(ctx context.Context, username string) error {
	key := rateLimitKeyPrefix + username

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Error("Rate limit counter unavailable, allowing request", "username", username, "error", err)
		return nil
	}

	if count == 1 {
		// First request of a fresh window arms the expiry. Only the
		// increment that observed 1 does this, so a concurrent request
		// cannot restart an in-progress window.
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Error("Failed to set rate limit window expiry", "username", username, "error", err)
		}
	}

	if count > int64(l.maxRequests) {
		retryAfter := l.retryAfterSeconds(ctx, key)
		l.logger.Warn("Rate limit exceeded",
			"username", username, "count", count, "max", l.maxRequests, "retry_after_seconds", retryAfter)
		return &apperrors.RateLimitError{
			MaxRequests:       l.maxRequests,
			RetryAfterSeconds: retryAfter,
		}
	}

	l.logger.Debug("Rate limit check passed", "username", username, "count", count, "max", l.maxRequests)
	return nil
}

// retryAfterSeconds reads the counter's remaining TTL. When the store
// cannot report a positive TTL (transient fault, or the expiry race above)
// it falls back to the full window.
func (l *Limiter) retryAfterSeconds(ctx context.Context, key string) int64 {
	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		return int64(l.window / time.Second)
	}
	// Round up so a sub-second remainder still tells the client to wait.
	return int64((ttl + time.Second - 1) / time.Second)
}
