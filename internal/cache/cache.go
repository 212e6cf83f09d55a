// Package cache provides a Redis-backed read cache for hot, read-mostly data
// (the category tree, the listing feed front page). A nil client disables
// caching; callers always fall through to the database.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"sokoni/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis. Returns nil when the server is not
// reachable so the app degrades to uncached reads instead of failing startup.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[CACHE] redis unavailable (%v), caching disabled", err)
		return nil
	}
	return client
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps a possibly-nil Redis client.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get unmarshals the cached value into out. Returns false on miss, disabled
// cache, or decode failure.
func (c *Cache) Get(ctx context.Context, key string, out interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false
	}
	return true
}

// Set stores the value best-effort; failures are logged and ignored.
func (c *Cache) Set(ctx context.Context, key string, v interface{}) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("[CACHE] set %s: %v", key, err)
	}
}

// Invalidate drops keys best-effort.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[CACHE] del: %v", err)
	}
}
