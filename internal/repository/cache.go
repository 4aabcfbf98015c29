package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultProductCacheTTL = 5 * time.Minute

const productCachePrefix = "stock:product:"

// ProductCache is a read-through JSON cache in redis. A nil client turns
// every call into a no-op, so the service runs without redis.
type ProductCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultProductCacheTTL
	}
	return &ProductCache{redis: client, ttl: ttl}
}

func productCacheKey(id string) string {
	return productCachePrefix + id
}

// Get unmarshals the cached value into dest and reports a hit
func (c *ProductCache) Get(ctx context.Context, id string, dest interface{}) bool {
	if c == nil || c.redis == nil {
		return false
	}
	val, err := c.redis.Get(ctx, productCacheKey(id)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(val, dest) == nil
}

func (c *ProductCache) Set(ctx context.Context, id string, value interface{}) {
	if c == nil || c.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, productCacheKey(id), data, c.ttl).Err()
}

func (c *ProductCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, productCacheKey(id)).Err()
}

// Health pings redis
func (c *ProductCache) Health(ctx context.Context) error {
	if c == nil || c.redis == nil {
		return fmt.Errorf("redis not configured")
	}
	return c.redis.Ping(ctx).Err()
}
