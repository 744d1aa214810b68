package geocode

import (
	"sync"
	"time"
)

// Cache remembers lookups by query, misses included, so a place repeated across
// records costs one request per run
type Cache struct {
	mu       sync.Mutex
	points   map[string]*Point
	cachedAt map[string]time.Time
	ttl      time.Duration
}

// NewCache creates a cache whose entries expire after ttl
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		points:   make(map[string]*Point),
		cachedAt: make(map[string]time.Time),
		ttl:      ttl,
	}
}

// Get returns the cached result for a query and whether one was found.
// A found nil point is a remembered miss.
func (c *Cache) Get(query string) (*Point, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, exists := c.points[query]
	if !exists {
		return nil, false
	}

	if time.Since(c.cachedAt[query]) > c.ttl {
		delete(c.points, query)
		delete(c.cachedAt, query)
		return nil, false
	}

	return p, true
}

// Set stores the result for a query; p may be nil for a miss
func (c *Cache) Set(query string, p *Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.points[query] = p
	c.cachedAt[query] = time.Now()
}

// CleanExpired removes expired entries and returns how many were removed
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := time.Now()
	for key, at := range c.cachedAt {
		if now.Sub(at) > c.ttl {
			delete(c.points, key)
			delete(c.cachedAt, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of cached entries
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.points)
}
