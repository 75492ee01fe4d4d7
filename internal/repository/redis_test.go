package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimiter(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	limiter := NewRedisRateLimiter(client)
	ctx := context.Background()

	t.Run("RateLimit", func(t *testing.T) {
		limit := 2
		window := time.Second

		allowed, err := limiter.Allow(ctx, "1.2.3.4", limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = limiter.Allow(ctx, "1.2.3.4", limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		// Third request exceeds the limit.
		allowed, err = limiter.Allow(ctx, "1.2.3.4", limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		// Other keys are unaffected.
		allowed, err = limiter.Allow(ctx, "5.6.7.8", limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		// After the window the count resets.
		s.FastForward(window + time.Millisecond)
		allowed, err = limiter.Allow(ctx, "1.2.3.4", limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		limiter := NewRedisRateLimiter(nil)
		_, err := limiter.Allow(ctx, "x", 1, time.Second)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})
}
