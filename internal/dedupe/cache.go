package dedupe

import (
	"sync"
	"time"
)

type stamped struct {
	key string
	at  time.Time
}

// Cache keeps a bounded set of recently indexed chunk IDs so the worker can
// skip re-deliveries inside the ttl window.
type Cache struct {
	mu       sync.Mutex
	seen     map[string]time.Time
	queue    []stamped
	capacity int
	ttl      time.Duration
}

// New creates a cache with the provided capacity and ttl.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		seen:     make(map[string]time.Time, capacity),
		queue:    make([]stamped, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Seen reports whether the key was remembered inside the ttl window. It does
// not record the key; use Remember for that.
func (c *Cache) Seen(key string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	at, ok := c.seen[key]
	return ok && now.Sub(at) <= c.ttl
}

// Remember records that a key has been indexed.
func (c *Cache) Remember(key string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seen[key] = now
	c.queue = append(c.queue, stamped{key: key, at: now})
	c.evict(now)
}

// evict drops expired entries and, when over capacity, the oldest ones. A
// queue entry only removes the map key if the timestamps still agree, so a
// re-remembered key survives the eviction of its older record.
func (c *Cache) evict(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.queue) > 0 && (len(c.seen) > c.capacity || c.queue[0].at.Before(cutoff)) {
		oldest := c.queue[0]
		c.queue = c.queue[1:]

		if at, ok := c.seen[oldest.key]; ok && at.Equal(oldest.at) {
			delete(c.seen, oldest.key)
		}
	}
}
