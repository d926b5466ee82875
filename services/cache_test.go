package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClockedCache(ttl time.Duration, maxItems int) (*SearchCache, *time.Time) {
	current := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := NewSearchCacheWithClock(ttl, maxItems, func() time.Time { return current })
	return cache, &current
}

func TestSearchCacheHitAndExpiry(t *testing.T) {
	cache, now := newClockedCache(10*time.Minute, 10)
	key := CacheKey("arroz", 5)
	cache.Set(key, &SearchResult{Term: "arroz", TotalFound: 2})

	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, 2, got.TotalFound)

	*now = now.Add(10*time.Minute + time.Second)
	_, ok = cache.Get(key)
	assert.False(t, ok, "entry past its TTL must be a miss")
	assert.Equal(t, 0, cache.Len(), "expired entry is purged on access")
}

func TestSearchCacheKeyNormalization(t *testing.T) {
	assert.Equal(t, CacheKey("Arroz  Integral", 5), CacheKey("arroz integral", 5))
	assert.NotEqual(t, CacheKey("arroz", 5), CacheKey("arroz", 10))
}

func TestSearchCacheEvictsEarliestExpiry(t *testing.T) {
	cache, now := newClockedCache(10*time.Minute, 2)

	cache.Set("a", &SearchResult{Term: "a"})
	*now = now.Add(time.Minute)
	cache.Set("b", &SearchResult{Term: "b"})
	*now = now.Add(time.Minute)
	cache.Set("c", &SearchResult{Term: "c"})

	_, ok := cache.Get("a")
	assert.False(t, ok, "the soonest-to-expire entry is evicted when full")
	_, ok = cache.Get("b")
	assert.True(t, ok)
	_, ok = cache.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Len())
}

func TestSearchCacheLastWriteWins(t *testing.T) {
	cache, _ := newClockedCache(10*time.Minute, 10)

	cache.Set("k", &SearchResult{Term: "first"})
	cache.Set("k", &SearchResult{Term: "second"})

	got, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, "second", got.Term)
	assert.Equal(t, 1, cache.Len(), "overwriting a key must not evict others")
}
