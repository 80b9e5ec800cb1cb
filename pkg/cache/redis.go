package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin redis wrapper used as a fast path in front of database
// unique constraints (webhook event dedup). It is never the source of
// truth; a miss just falls through to the store.
type Cache struct {
	c *redis.Client
}

func New(addr, password string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})}
}

// NewFromClient wraps an existing client (tests use miniredis).
func NewFromClient(c *redis.Client) *Cache {
	return &Cache{c: c}
}

// MarkOnce sets key if absent and reports whether this call claimed it.
// Errors degrade to "not claimed" so redis unavailability never blocks
// processing.
func (r *Cache) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.c.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.c.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Cache) Del(ctx context.Context, key string) error {
	return r.c.Del(ctx, key).Err()
}

func (r *Cache) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

func (r *Cache) Close() error {
	return r.c.Close()
}
