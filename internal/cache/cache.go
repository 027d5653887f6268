package cache

import (
	"sync"
	"time"
)

// Cache is a small in-process TTL map. Expired entries are dropped on read
// and swept whenever the map grows past its cap.
type Cache[V any] struct {
	mu  sync.RWMutex
	ttl time.Duration
	max int
	now func() time.Time
	m   map[string]entry[V]
}

type entry[V any] struct {
	val V
	exp time.Time
}

func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 1024
	}

	return &Cache[V]{
		ttl: ttl,
		max: maxEntries,
		now: time.Now,
		m:   make(map[string]entry[V]),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}

	now := c.now()
	if !now.After(e.exp) {
		return e.val, true
	}

	// a Set may have refreshed the key since the read lock was dropped
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.m[key]
	if ok && !now.After(cur.exp) {
		return cur.val, true
	}
	if ok {
		delete(c.m, key)
	}
	var zero V
	return zero, false
}

func (c *Cache[V]) Set(key string, val V) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.m) >= c.max {
		c.sweepLocked(now)
	}
	// still full: start over rather than track recency
	if len(c.m) >= c.max {
		c.m = make(map[string]entry[V])
	}
	c.m[key] = entry[V]{val: val, exp: now.Add(c.ttl)}
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *Cache[V]) sweepLocked(now time.Time) {
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
		}
	}
}
