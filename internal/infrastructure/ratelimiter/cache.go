package ratelimiter

import (
	"sync"
	"time"
)

type cacheEntry struct {
	state     bucketState
	expiresAt time.Time
}

type bucketCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newBucketCache() *bucketCache {
	c := &bucketCache{entries: make(map[string]cacheEntry)}
	go c.cleanupLoop()
	return c
}

func (c *bucketCache) Get(key string) (bucketState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return bucketState{}, false
	}
	return entry.state, true
}

func (c *bucketCache) Set(key string, state bucketState, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{state: state, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *bucketCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}
