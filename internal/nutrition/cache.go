package nutrition

import (
	"context"
	"sync"
	"time"

	"github.com/vithika-cyber/calorie-bot/internal/models"
)

// Cache stores successful lookups keyed by normalized query. The resolver
// only needs present/absent; absence is always resolved afresh and
// re-cached on success.
type Cache interface {
	Get(ctx context.Context, key string) (*models.FoodRecord, bool)
	Put(ctx context.Context, key string, rec *models.FoodRecord)
}

type memoryEntry struct {
	rec     models.FoodRecord
	addedAt time.Time
}

// MemoryCache is a process-local backing with wall-clock expiry. A zero TTL
// disables expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*models.FoodRecord, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.ttl > 0 && c.now().Sub(entry.addedAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	rec := entry.rec
	return &rec, true
}

func (c *MemoryCache) Put(_ context.Context, key string, rec *models.FoodRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{rec: *rec, addedAt: c.now()}
}
