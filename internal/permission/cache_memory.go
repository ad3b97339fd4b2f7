package permission

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	allowed bool
	expires time.Time
}

// MemoryCache keeps results in process memory for a limited time.
type MemoryCache struct {
	mu      sync.RWMutex
	gen     uint64
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates a memory cache. A zero ttl keeps results until invalidated.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Generation implements Cache.
func (c *MemoryCache) Generation(context.Context) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.gen, nil
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, gen uint64, key string) (bool, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	current := c.gen
	c.mu.RUnlock()

	if !ok || gen != current {
		return false, false, nil
	}

	if !e.expires.IsZero() && c.now().After(e.expires) {
		c.mu.Lock()
		if c.gen == gen {
			delete(c.entries, key)
		}
		c.mu.Unlock()

		return false, false, nil
	}

	return e.allowed, true, nil
}

// Set implements Cache. Results of a past generation are dropped.
func (c *MemoryCache) Set(_ context.Context, gen uint64, key string, allowed bool) error {
	e := memoryEntry{allowed: allowed}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	if c.gen == gen {
		c.entries[key] = e
	}
	c.mu.Unlock()

	return nil
}

// Invalidate implements Cache.
func (c *MemoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	c.gen++
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()

	return nil
}

// Len returns the number of cached results.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
