package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache implements a two-level Service: L1 sharded memory in front
// of L2 Redis. Writes go through both; reads that miss L1 but hit L2
// repopulate L1 so a warm process rarely touches Redis.
type LayeredCache struct {
	mem   *MemoryCache
	redis *RedisCache
}

// NewLayeredCache creates a layered cache with memory and Redis.
func NewLayeredCache(redisCache *RedisCache, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 2048,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &LayeredCache{
		mem:   NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		redis: redisCache,
	}
}

func (lc *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if b, err := lc.mem.Get(ctx, key); err == nil {
		return b, nil
	}

	b, err := lc.redis.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	// Repopulate L1. Remaining Redis TTL is not queried; the L1 copy gets
	// the full TTL again, which only risks serving slightly-staler data
	// within the same order of magnitude.
	ttl := lc.redis.client.TTL(ctx, lc.redis.key(key)).Val()
	if ttl > 0 {
		_ = lc.mem.Set(ctx, key, b, ttl)
	}
	return b, nil
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	// Write-through: Redis first, then memory
	if err := lc.redis.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	_ = lc.mem.Set(ctx, key, value, ttl)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.mem.Delete(ctx, keys...)
	return lc.redis.Delete(ctx, keys...)
}

func (lc *LayeredCache) Clear(ctx context.Context) error {
	_ = lc.mem.Clear(ctx)
	return lc.redis.Clear(ctx)
}

func (lc *LayeredCache) Len(ctx context.Context) (int, error) {
	return lc.redis.Len(ctx)
}

func (lc *LayeredCache) Close() error {
	err1 := lc.mem.Close()
	err2 := lc.redis.Close()
	return errors.Join(err1, err2)
}
