package services

import (
	"fmt"
	"sync"
	"time"
)

type cacheEntry struct {
	value     *SearchResult
	expiresAt time.Time
}

// SearchCache is a bounded in-memory TTL cache for search results.
// Expired entries are purged lazily on read; when the cache is full the
// entry with the earliest expiry is evicted, which under a uniform TTL
// approximates oldest-first. State is process-local and never persisted.
type SearchCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	maxItems int
	now      func() time.Time
	entries  map[string]cacheEntry
}

// NewSearchCache builds a cache backed by the wall clock.
func NewSearchCache(ttl time.Duration, maxItems int) *SearchCache {
	return NewSearchCacheWithClock(ttl, maxItems, time.Now)
}

// NewSearchCacheWithClock injects the clock so expiry is testable.
func NewSearchCacheWithClock(ttl time.Duration, maxItems int, now func() time.Time) *SearchCache {
	return &SearchCache{
		ttl:      ttl,
		maxItems: maxItems,
		now:      now,
		entries:  make(map[string]cacheEntry),
	}
}

// CacheKey derives the cache key for a (term, limit) request.
func CacheKey(term string, limit int) string {
	return fmt.Sprintf("term:%s|size:%d", NormalizeText(term), limit)
}

// Get returns the cached result for key, treating expired entries as misses.
func (c *SearchCache) Get(key string) (*SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key. Concurrent writers to the same key resolve as
// last write wins; entries are derived, reconstructible data.
func (c *SearchCache) Set(key string, value *SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxItems {
		c.evictEarliest()
	}
	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Len reports the current entry count.
func (c *SearchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *SearchCache) evictEarliest() {
	var victim string
	var victimExpiry time.Time
	for key, entry := range c.entries {
		if victim == "" || entry.expiresAt.Before(victimExpiry) {
			victim = key
			victimExpiry = entry.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}
