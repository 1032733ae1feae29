package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCounts(t *testing.T) {
	store := NewMemoryStore()

	for i := int64(1); i <= 3; i++ {
		count, err := store.Incr(context.Background(), "key", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Incr(context.Background(), "a", time.Minute)
	require.NoError(t, err)
	_, err = store.Incr(context.Background(), "a", time.Minute)
	require.NoError(t, err)

	count, err := store.Incr(context.Background(), "b", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMemoryStoreWindowExpires(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Incr(context.Background(), "key", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	count, err := store.Incr(context.Background(), "key", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLimiterAllowsUpToMax(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore(), 3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(context.Background(), "user@example.com")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i+1)
	}

	allowed, err := limiter.Allow(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different key is unaffected.
	allowed, err = limiter.Allow(context.Background(), "other@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}
