package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pkgcache "StockPulse/pkg/cache"
)

func newTestStore() *Store {
	return NewStore(pkgcache.NewMemoryCache())
}

func TestGetOrComputeIdempotent(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	var calls int32

	fn := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		v, err := GetOrCompute(ctx, s, "op", "op:key", time.Minute, fn)
		if err != nil {
			t.Fatalf("get_or_compute: %v", err)
		}
		if v != "value" {
			t.Fatalf("unexpected value %q", v)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("compute ran %d times, want 1", n)
	}

	stats, _ := s.Stats(ctx)
	if st := stats["op"]; st.Hits != 2 || st.Misses != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestGetOrComputeExpiry(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	var calls int32

	fn := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	}

	if _, err := GetOrCompute(ctx, s, "op", "op:key", 10*time.Millisecond, fn); err != nil {
		t.Fatalf("first call: %v", err)
	}
	time.Sleep(25 * time.Millisecond)
	if _, err := GetOrCompute(ctx, s, "op", "op:key", 10*time.Millisecond, fn); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("compute ran %d times after expiry, want 2", n)
	}
}

func TestGetOrComputeSingleFlight(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	fn := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	const waiters = 8
	var wg sync.WaitGroup
	results := make([]string, waiters)
	errs := make([]error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = GetOrCompute(ctx, s, "op", "op:key", time.Minute, fn)
		}(i)
	}

	// let all goroutines reach the flight before releasing the computation
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("concurrent callers triggered %d computations, want 1", n)
	}
	for i := 0; i < waiters; i++ {
		if errs[i] != nil {
			t.Fatalf("waiter %d error: %v", i, errs[i])
		}
		if results[i] != "shared" {
			t.Fatalf("waiter %d got %q", i, results[i])
		}
	}
}

func TestGetOrComputeFailureNotCached(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	var calls int32
	boom := errors.New("upstream exploded")
	fn := func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return "", boom
		}
		return "recovered", nil
	}

	if _, err := GetOrCompute(ctx, s, "op", "op:key", time.Minute, fn); !errors.Is(err, boom) {
		t.Fatalf("expected the compute error, got %v", err)
	}
	v, err := GetOrCompute(ctx, s, "op", "op:key", time.Minute, fn)
	if err != nil {
		t.Fatalf("retry should recompute: %v", err)
	}
	if v != "recovered" {
		t.Fatalf("unexpected value %q", v)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("compute ran %d times, want 2 (failure must not be pinned)", n)
	}
}

func TestGetOrComputeFailureSharedByWaiters(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	boom := errors.New("train failed")
	release := make(chan struct{})
	var calls int32
	fn := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "", boom
	}

	const waiters = 4
	var wg sync.WaitGroup
	errs := make([]error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = GetOrCompute(ctx, s, "op", "op:key", time.Minute, fn)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("compute ran %d times, want 1", n)
	}
	for i, err := range errs {
		if !errors.Is(err, boom) {
			t.Fatalf("waiter %d should share the failure, got %v", i, err)
		}
	}
}

func TestStoreClear(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	var calls int32

	fn := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "v", nil
	}

	_, _ = GetOrCompute(ctx, s, "op", "op:key", time.Minute, fn)
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	_, _ = GetOrCompute(ctx, s, "op", "op:key", time.Minute, fn)
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("compute ran %d times after clear, want 2", n)
	}
}
