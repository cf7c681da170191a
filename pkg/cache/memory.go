package cache

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 16

type memoryItem struct {
	value    []byte
	expireAt time.Time
}

func (m *memoryItem) expired(now time.Time) bool {
	return !m.expireAt.IsZero() && now.After(m.expireAt)
}

type shard struct {
	mu   sync.RWMutex
	data map[string]*memoryItem
}

// MemoryCache implements Service with a sharded in-memory table. Sharding
// keeps concurrent requests for unrelated keys off the same lock; expired
// entries are evicted lazily when the key is next touched.
type MemoryCache struct {
	shards  [shardCount]*shard
	maxSize int // per shard
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize: 2048,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{maxSize: cfg.MaxSize/shardCount + 1}
	for i := range mc.shards {
		mc.shards[i] = &shard{data: make(map[string]*memoryItem)}
	}
	return mc
}

func (mc *MemoryCache) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return mc.shards[h.Sum32()%shardCount]
}

func (mc *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	s := mc.shardFor(key)
	now := time.Now()

	s.mu.RLock()
	item, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCacheMiss
	}
	if item.expired(now) {
		s.mu.Lock()
		// re-check under the write lock; another goroutine may have replaced it
		if cur, ok := s.data[key]; ok && cur.expired(now) {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

func (mc *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expireAt time.Time
	if ttl > 0 {
		expireAt = time.Now().Add(ttl)
	}

	s := mc.shardFor(key)
	s.mu.Lock()
	if len(s.data) >= mc.maxSize {
		s.evictOne()
	}
	s.data[key] = &memoryItem{value: value, expireAt: expireAt}
	s.mu.Unlock()
	return nil
}

// evictOne removes an expired entry if any exists, otherwise an arbitrary
// one. Called with the shard write lock held.
func (s *shard) evictOne() {
	now := time.Now()
	for k, it := range s.data {
		if it.expired(now) {
			delete(s.data, k)
			return
		}
	}
	for k := range s.data {
		delete(s.data, k)
		return
	}
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s := mc.shardFor(key)
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
	}
	return nil
}

func (mc *MemoryCache) Clear(_ context.Context) error {
	for _, s := range mc.shards {
		s.mu.Lock()
		s.data = make(map[string]*memoryItem)
		s.mu.Unlock()
	}
	return nil
}

func (mc *MemoryCache) Len(_ context.Context) (int, error) {
	n := 0
	now := time.Now()
	for _, s := range mc.shards {
		s.mu.RLock()
		for _, it := range s.data {
			if !it.expired(now) {
				n++
			}
		}
		s.mu.RUnlock()
	}
	return n, nil
}

func (mc *MemoryCache) Close() error { return nil }
