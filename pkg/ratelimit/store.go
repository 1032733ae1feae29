package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Store counts attempts per key within a rolling window. Backends:
// the in-process store for single-instance deployments, the Redis
// store when multiple instances must share counters.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter enforces a maximum number of attempts per key per window
// against an injected Store.
type Limiter struct {
	store  Store
	max    int64
	window time.Duration
}

func NewLimiter(store Store, max int64, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		max:    max,
		window: window,
	}
}

// Allow records one attempt for key and reports whether it is within
// the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	return count <= l.max, nil
}
