package utils

import (
	"sync"
	"time"
)

// DefaultCacheTTL bounds how stale a cached profile read may be.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
    value     interface{}
    expiresAt time.Time
}

// TTLCache is a small read-through cache keyed by string. Entries expire
// after the TTL; the only other invalidation is Clear on a single key.
// Concurrent misses for the same key may both fetch — there is no
// single-flight collapsing.
type TTLCache struct {
    mu      sync.RWMutex
    ttl     time.Duration
    entries map[string]cacheEntry
}

func NewTTLCache(ttl time.Duration) *TTLCache {
    if ttl <= 0 {
        ttl = DefaultCacheTTL
    }
    return &TTLCache{
        ttl:     ttl,
        entries: make(map[string]cacheEntry),
    }
}

func (c *TTLCache) Get(key string) (interface{}, bool) {
    c.mu.RLock()
    entry, ok := c.entries[key]
    c.mu.RUnlock()
    if !ok || time.Now().After(entry.expiresAt) {
        return nil, false
    }
    return entry.value, true
}

func (c *TTLCache) Set(key string, value interface{}) {
    c.mu.Lock()
    c.entries[key] = cacheEntry{
        value:     value,
        expiresAt: time.Now().Add(c.ttl),
    }
    c.mu.Unlock()
}

// Clear drops a single key.
func (c *TTLCache) Clear(key string) {
    c.mu.Lock()
    delete(c.entries, key)
    c.mu.Unlock()
}
