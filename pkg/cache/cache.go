package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service is a byte-oriented TTL cache. Values are opaque blobs; typed
// (de)serialization happens above this interface. Get must treat expired
// entries as misses and may evict them lazily.
type Service interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
	Close() error
}
