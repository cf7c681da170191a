package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domrepo "StockPulse/internal/domain/repository"
	pkgcache "StockPulse/pkg/cache"
)

// Store is the get-or-compute layer every expensive operation (provider
// fetch, feature computation, model training) sits behind. It combines a
// TTL cache with single-flight coalescing: a live entry is returned
// without running the compute function, otherwise exactly one caller per
// key computes while concurrent callers wait on that execution and share
// its result or its failure. Failed computations are never stored, so the
// next request retries.
type Store struct {
	backend pkgcache.Service
	sf      singleflight.Group
	metrics domrepo.Metrics

	mu    sync.Mutex
	stats map[string]*OpStats
}

// OpStats tracks hit/miss counts for one operation name.
type OpStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewStore wraps a cache backend (memory or layered memory+Redis).
func NewStore(backend pkgcache.Service) *Store {
	return &Store{
		backend: backend,
		stats:   make(map[string]*OpStats),
	}
}

// SetMetrics attaches an external recorder for hit/miss counters.
func (s *Store) SetMetrics(m domrepo.Metrics) { s.metrics = m }

// GetOrCompute returns the cached raw value for key, or runs fn under
// single-flight and stores its result for ttl. op is the operation name
// used for stats and must be the key's first segment.
func (s *Store) GetOrCompute(ctx context.Context, op, key string, ttl time.Duration, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	// Backend trouble (e.g. Redis down) degrades to a miss, not a failure.
	if b, err := s.backend.Get(ctx, key); err == nil {
		s.record(op, true)
		return b, nil
	}
	s.record(op, false)

	// Waiters that give up do not cancel the in-flight computation:
	// it runs on a background context so other waiters still get a result.
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		// Re-check inside the flight: a previous flight may have stored
		// the value between our miss and acquiring the flight.
		if b, err := s.backend.Get(context.Background(), key); err == nil {
			return b, nil
		}
		b, err := fn(context.Background())
		if err != nil {
			return nil, err
		}
		if setErr := s.backend.Set(context.Background(), key, b, ttl); setErr != nil {
			// a failed store write is not a failed computation
			return b, nil
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Store) record(op string, hit bool) {
	s.mu.Lock()
	st, ok := s.stats[op]
	if !ok {
		st = &OpStats{}
		s.stats[op] = st
	}
	if hit {
		st.Hits++
	} else {
		st.Misses++
	}
	s.mu.Unlock()

	if s.metrics != nil {
		if hit {
			s.metrics.RecordCacheHit(op)
		} else {
			s.metrics.RecordCacheMiss(op)
		}
	}
}

// Stats returns a copy of per-operation hit/miss counts plus the live
// entry count.
func (s *Store) Stats(ctx context.Context) (map[string]OpStats, int) {
	s.mu.Lock()
	out := make(map[string]OpStats, len(s.stats))
	for op, st := range s.stats {
		out[op] = *st
	}
	s.mu.Unlock()

	n, err := s.backend.Len(ctx)
	if err != nil {
		n = -1
	}
	return out, n
}

// Clear drops every cached entry.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Clear(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// GetOrCompute is the typed wrapper around Store.GetOrCompute: values are
// serialized as JSON blobs in the backend.
func GetOrCompute[T any](ctx context.Context, s *Store, op, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	b, err := s.GetOrCompute(ctx, op, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal cache value: %w", err)
		}
		return raw, nil
	})
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return zero, fmt.Errorf("unmarshal cache value %s: %w", key, err)
	}
	return v, nil
}
