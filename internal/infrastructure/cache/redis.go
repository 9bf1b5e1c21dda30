package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pricecompare/backend/internal/domain"
)

const defaultKeyPrefix = "pricecompare:"

// RedisCache stores payloads in Redis and relies on native key expiry,
// so it needs no sweeping.
type RedisCache struct {
	client *redis.Client
	prefix string

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisClient parses redisURL and verifies connectivity
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// NewRedisCache wraps an existing client. An empty prefix uses "pricecompare:".
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Get retrieves a payload from Redis
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	payload, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		c.misses.Add(1)
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}

	c.hits.Add(1)
	return payload, nil
}

// Set stores a payload with TTL
func (c *RedisCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes a payload
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// Exists checks whether an unexpired key is present
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %q: %w", key, err)
	}
	return n > 0, nil
}

// Stats counts the keys under the prefix and reports hit/miss counters
func (c *RedisCache) Stats(ctx context.Context) (domain.CacheStats, error) {
	stats := domain.CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		stats.Keys++
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("redis scan: %w", err)
	}
	return stats, nil
}

// Close releases the underlying connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}
