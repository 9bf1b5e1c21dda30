package domain

import (
	"context"
	"time"
)

// CacheStats reports cache usage for the health endpoint
type CacheStats struct {
	Keys   int   `json:"keys"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// CacheRepository defines the interface for caching operations.
// Payloads are opaque JSON documents; entries are never mutated after Set.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Stats(ctx context.Context) (CacheStats, error)
}

// TokenProvider hands out bearer tokens for authenticated marketplaces
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context) error
}

// EbayClient searches the auction marketplace
type EbayClient interface {
	Search(ctx context.Context, query string) ([]EbayItem, error)
}

// EtsyClient searches the handmade marketplace
type EtsyClient interface {
	Search(ctx context.Context, query string) ([]EtsyListing, error)
}

// AliExpressClient searches the wholesale marketplace
type AliExpressClient interface {
	Search(ctx context.Context, query string) ([]AliExpressItem, error)
}
