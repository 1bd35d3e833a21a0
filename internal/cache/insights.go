package cache

import (
	"sync"
	"time"

	"budget/internal/core"
	"budget/internal/services"
)

// InsightsCache holds insight snapshots per range token with a TTL. The
// range vocabulary is tiny, so plain expiry is enough; any confirmed
// mutation invalidates everything because every cached aggregate may have
// changed.
type InsightsCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[core.Range]entry
}

type entry struct {
	snap      services.InsightsSnapshot
	expiresAt time.Time
}

func NewInsightsCache(ttl time.Duration) *InsightsCache {
	return &InsightsCache{
		ttl:     ttl,
		entries: make(map[core.Range]entry),
	}
}

// Get returns the cached snapshot for a range if present and fresh.
func (c *InsightsCache) Get(rng core.Range) (services.InsightsSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[rng]
	if !ok {
		return services.InsightsSnapshot{}, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, rng)
		return services.InsightsSnapshot{}, false
	}
	return e.snap, true
}

// Set stores a snapshot under its range token.
func (c *InsightsCache) Set(snap services.InsightsSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[snap.Range] = entry{snap: snap, expiresAt: time.Now().Add(c.ttl)}
}

// InvalidateAll drops every cached snapshot. Called after any confirmed
// mutation.
func (c *InsightsCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[core.Range]entry)
}

// CleanExpired removes stale entries and reports how many were dropped.
func (c *InsightsCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for rng, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, rng)
			removed++
		}
	}
	return removed
}

// Size returns the current number of cached ranges.
func (c *InsightsCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
