package repository

import (
    "context"
    "encoding/json"
    "errors"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/cinemaflow/internal/model"
)

// CatalogCache stores the rendered-ready movie listings in Redis.  A
// cache built with a nil client is a no-op: Get always misses and Set
// and Invalidate do nothing.
type CatalogCache struct {
    rdb *redis.Client
    ttl time.Duration
    key string
}

// NewCatalogCache returns a cache writing to prefix + ":listings".
func NewCatalogCache(rdb *redis.Client, ttl time.Duration, prefix string) *CatalogCache {
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    if prefix == "" {
        prefix = "cinemaflow:cache"
    }
    return &CatalogCache{rdb: rdb, ttl: ttl, key: prefix + ":listings"}
}

// Enabled reports whether a Redis client backs the cache.
func (c *CatalogCache) Enabled() bool { return c != nil && c.rdb != nil }

// Get returns the cached listings.  ok is false on a miss or when the
// cache is disabled; a payload that fails to decode counts as a miss.
func (c *CatalogCache) Get(ctx context.Context) (listings []model.MovieListing, ok bool, err error) {
    if !c.Enabled() {
        return nil, false, nil
    }
    bs, err := c.rdb.Get(ctx, c.key).Bytes()
    if err != nil {
        if errors.Is(err, redis.Nil) {
            return nil, false, nil
        }
        return nil, false, err
    }
    if err := json.Unmarshal(bs, &listings); err != nil {
        return nil, false, nil
    }
    return listings, true, nil
}

// Set stores listings with the configured TTL.
func (c *CatalogCache) Set(ctx context.Context, listings []model.MovieListing) error {
    if !c.Enabled() {
        return nil
    }
    bs, err := json.Marshal(listings)
    if err != nil {
        return err
    }
    return c.rdb.Set(ctx, c.key, bs, c.ttl).Err()
}

// Invalidate drops the cached listings.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
    if !c.Enabled() {
        return nil
    }
    return c.rdb.Del(ctx, c.key).Err()
}
