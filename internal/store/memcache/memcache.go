// Package memcache is the in-process fallback for the analysis result
// cache when Redis is not configured. Same staleness contract, no
// external dependency.
package memcache

import (
	"context"
	"sync"
	"time"

	"github.com/lordfcde/sharkwatch/internal/model"
)

type entry struct {
	res       model.AnalysisResult
	expiresAt time.Time
}

// Cache is a TTL map of analysis results. Thread-safe.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	// now is swapped in tests.
	now func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached result for key if it has not expired.
func (c *Cache) Get(_ context.Context, key string) (model.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return model.AnalysisResult{}, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return model.AnalysisResult{}, false
	}
	return e.res, true
}

// Set stores res under key for ttl. Expired entries are swept
// opportunistically on write; the key space is bounded by the symbol
// universe, so no background sweeper is needed.
func (c *Cache) Set(_ context.Context, key string, res model.AnalysisResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry{res: res, expiresAt: now.Add(ttl)}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
