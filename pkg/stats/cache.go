package stats

import (
	"sync"
	"time"
)

// DefaultCacheTTL absorbs repeated reads without re-querying and
// re-converting. Mutations must invalidate explicitly; there is no automatic
// invalidation.
const DefaultCacheTTL = time.Minute

type cacheEntry struct {
	stats     *FinancialStats
	expiresAt time.Time
}

// Cache is a TTL cache of computed snapshots keyed by ownership scope.
// Entries for different scopes never contend beyond the map lock.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration

	now func() time.Time
}

// NewCache creates a snapshot cache. A non-positive ttl falls back to
// DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached snapshot for a scope key, if present and fresh.
func (c *Cache) Get(key string) (*FinancialStats, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.stats, true
}

// Set stores a snapshot for a scope key.
func (c *Cache) Set(key string, stats *FinancialStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{stats: stats, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate drops the entry for a scope key. Called after any mutation to
// the scope's underlying events.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
