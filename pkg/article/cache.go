package article

import (
	"sync"
	"time"
)

// entry stores an article and its insertion time.
type entry struct {
	article  Article
	storedAt time.Time
}

// Cache is an in-memory TTL cache of rendered articles. It is safe for
// concurrent use. Entries are immutable once written.
type Cache struct {
	mu         sync.RWMutex
	items      map[Key]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewCache creates a cache whose entries expire after ttl. maxEntries bounds
// the number of entries, evicting the oldest first; 0 means unbounded.
func NewCache(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		items:      make(map[Key]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the article for key if present and fresh.
func (c *Cache) Get(key Key) (Article, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return Article{}, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.mu.Lock()
		// Another writer may have refreshed it meanwhile.
		if cur, ok := c.items[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return Article{}, false
	}
	return e.article, true
}

// Set inserts or replaces the article for key. The last writer wins.
func (c *Cache) Set(key Key, a Article) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{article: a, storedAt: c.now()}
	if c.maxEntries > 0 && len(c.items) > c.maxEntries {
		c.pruneLocked()
		for len(c.items) > c.maxEntries {
			c.evictOldestLocked()
		}
	}
}

// Len returns the number of entries, including expired ones not yet pruned.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Prune removes expired entries and returns how many were removed.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pruneLocked()
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) pruneLocked() int {
	now := c.now()
	removed := 0
	for k, e := range c.items {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

func (c *Cache) evictOldestLocked() {
	var (
		oldestKey Key
		oldest    time.Time
		found     bool
	)
	for k, e := range c.items {
		if !found || e.storedAt.Before(oldest) {
			oldestKey, oldest, found = k, e.storedAt, true
		}
	}
	if found {
		delete(c.items, oldestKey)
	}
}
