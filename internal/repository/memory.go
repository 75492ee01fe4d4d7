package repository

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryRateLimiter keeps a token-bucket limiter per key in process memory.
// Used standalone in single-node setups and as the fallback when Redis is
// unavailable.
type MemoryRateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{}
}

func (m *MemoryRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	return m.getLimiter(key, limit, window).Allow(), nil
}

func (m *MemoryRateLimiter) getLimiter(key string, limit int, window time.Duration) *rate.Limiter {
	if v, ok := m.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	perSecond := float64(limit) / window.Seconds()
	lim := rate.NewLimiter(rate.Limit(perSecond), limit)
	actual, loaded := m.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}
