package crawler

import (
	"sync"
	"time"
)

type cacheEntry struct {
	expires time.Time
	body    []byte
}

// responseCache keeps successful bodies by URL until their TTL passes.
// A zero TTL disables caching.
type responseCache struct {
	now     func() time.Time
	entries map[string]cacheEntry
	ttl     time.Duration
	mu      sync.Mutex
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		now:     time.Now,
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *responseCache) get(key string) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if c.now().After(e.expires) {
		delete(c.entries, key)

		return nil, false
	}

	return e.body, true
}

func (c *responseCache) put(key string, body []byte) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{body: body, expires: c.now().Add(c.ttl)}
}
