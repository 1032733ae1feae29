package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore is the in-process backend. Counters expire with their
// window, so an idle key resets automatically.
type MemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.cache.Get(key); !found {
		s.cache.Set(key, int64(1), window)
		return 1, nil
	}

	count, err := s.cache.IncrementInt64(key, 1)
	if err != nil {
		// The entry expired between Get and Increment; start over.
		s.cache.Set(key, int64(1), window)
		return 1, nil
	}
	return count, nil
}
