// internal/ratelimit/limiter_test.go
package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-activity-connector/internal/apperrors"
)

func setupLimiter(t *testing.T, maxRequests int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLimiter(rdb, logger, maxRequests, window), mr
}

func TestLimiter_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the limit then denies with a retry hint", func(t *testing.T) {
		limiter, _ := setupLimiter(t, 5, time.Minute)

		for i := 0; i < 5; i++ {
			assert.NoError(t, limiter.Check(ctx, "alice"), "request %d should be allowed", i+1)
		}

		err := limiter.Check(ctx, "alice")
		require.Error(t, err)

		var rlErr *apperrors.RateLimitError
		require.ErrorAs(t, err, &rlErr)
		assert.Greater(t, rlErr.RetryAfterSeconds, int64(0))
		assert.LessOrEqual(t, rlErr.RetryAfterSeconds, int64(60))
	})

	t.Run("retry hint tracks the remaining window", func(t *testing.T) {
		limiter, mr := setupLimiter(t, 1, time.Minute)

		require.NoError(t, limiter.Check(ctx, "alice"))
		mr.FastForward(40 * time.Second)

		var rlErr *apperrors.RateLimitError
		require.ErrorAs(t, limiter.Check(ctx, "alice"), &rlErr)
		assert.Equal(t, int64(20), rlErr.RetryAfterSeconds)
	})

	t.Run("window elapse resets the counter", func(t *testing.T) {
		limiter, mr := setupLimiter(t, 2, time.Minute)

		require.NoError(t, limiter.Check(ctx, "alice"))
		require.NoError(t, limiter.Check(ctx, "alice"))
		require.Error(t, limiter.Check(ctx, "alice"))

		mr.FastForward(61 * time.Second)

		assert.NoError(t, limiter.Check(ctx, "alice"))
	})

	t.Run("users do not share counters", func(t *testing.T) {
		limiter, _ := setupLimiter(t, 1, time.Minute)

		require.NoError(t, limiter.Check(ctx, "alice"))
		require.Error(t, limiter.Check(ctx, "alice"))

		assert.NoError(t, limiter.Check(ctx, "bob"))
	})

	t.Run("concurrent checks lose no counts", func(t *testing.T) {
		const (
			maxRequests = 5
			callers     = 25
		)
		limiter, _ := setupLimiter(t, maxRequests, time.Minute)

		var allowed, denied atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := limiter.Check(ctx, "alice"); err != nil {
					var rlErr *apperrors.RateLimitError
					if errors.As(err, &rlErr) {
						denied.Add(1)
					}
				} else {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()

		// The atomic increment guarantees exactly maxRequests winners.
		assert.Equal(t, int64(maxRequests), allowed.Load())
		assert.Equal(t, int64(callers-maxRequests), denied.Load())
	})

	t.Run("fails open when the counter store is unreachable", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		limiter := NewLimiter(rdb, logger, 1, time.Minute)
		mr.Close()

		for i := 0; i < 3; i++ {
			assert.NoError(t, limiter.Check(ctx, "alice"))
		}
	})
}
