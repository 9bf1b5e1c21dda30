package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pricecompare/backend/internal/domain"
)

// cacheItem represents a single payload in the cache with expiration
type cacheItem struct {
	Payload    []byte
	InsertedAt time.Time
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache with TTL support.
// Expired entries are invisible to readers immediately and reclaimed by Sweep.
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
	now   func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]cacheItem),
		now:  time.Now,
	}
}

// Get retrieves a payload from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mutex.RLock()
	item, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists || !c.now().Before(item.Expiration) {
		c.misses.Add(1)
		return nil, domain.ErrCacheMiss
	}

	c.hits.Add(1)
	return item.Payload, nil
}

// Set stores a payload in the cache with TTL.
// The payload is copied so callers may reuse their buffer.
func (c *MemoryCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)

	now := c.now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		Payload:    stored,
		InsertedAt: now,
		Expiration: now.Add(ttl),
	}

	return nil
}

// Delete removes a payload from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return false, nil
	}

	return c.now().Before(item.Expiration), nil
}

// Stats reports the live key count and hit/miss counters
func (c *MemoryCache) Stats(ctx context.Context) (domain.CacheStats, error) {
	return domain.CacheStats{
		Keys:   c.liveKeys(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}, nil
}

// Sweep removes expired entries and returns how many were evicted
func (c *MemoryCache) Sweep() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	evicted := 0
	for key, item := range c.data {
		if !now.Before(item.Expiration) {
			delete(c.data, key)
			evicted++
		}
	}
	return evicted
}

// Size returns the number of stored entries, including expired ones not yet swept
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

func (c *MemoryCache) liveKeys() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := c.now()
	live := 0
	for _, item := range c.data {
		if now.Before(item.Expiration) {
			live++
		}
	}
	return live
}
