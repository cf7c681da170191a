package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	b, err := mc.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(b) != "v" {
		t.Fatalf("unexpected value %q", b)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	if _, err := mc.Get(context.Background(), "absent"); err != ErrCacheMiss {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(25 * time.Millisecond)
	if _, err := mc.Get(ctx, "k"); err != ErrCacheMiss {
		t.Fatalf("expected expiry miss, got %v", err)
	}
	// lazy eviction: expired entry should not count
	n, err := mc.Len(ctx)
	if err != nil {
		t.Fatalf("len: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 live entries, got %d", n)
	}
}

func TestMemoryCacheClear(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		_ = mc.Set(ctx, k, []byte(k), time.Minute)
	}
	if err := mc.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	n, _ := mc.Len(ctx)
	if n != 0 {
		t.Fatalf("expected empty cache, got %d", n)
	}
}

func TestKeyCanonical(t *testing.T) {
	got := Key("candles", "RELIANCE.NS", "1mo", "1d")
	if got != "candles:RELIANCE.NS:1mo:1d" {
		t.Fatalf("unexpected key %q", got)
	}
	if Key("catalog") != "catalog" {
		t.Fatalf("bare op should be its own key")
	}
}
