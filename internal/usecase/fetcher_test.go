package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/providers"
)

type stubProvider struct {
	name     string
	priority int

	mu     sync.Mutex
	calls  int
	quote  *models.Quote
	series []models.Candle
	err    error
}

func (s *stubProvider) Name() string                       { return s.name }
func (s *stubProvider) Priority() int                      { return s.priority }
func (s *stubProvider) Supports(c domrepo.Capability) bool { return c != domrepo.CapCatalog }

func (s *stubProvider) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubProvider) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.quote, nil
}

func (s *stubProvider) Candles(ctx context.Context, symbol string, p domrepo.Period, iv domrepo.Interval) ([]models.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.series, nil
}

func (s *stubProvider) Search(ctx context.Context, q string, limit int) ([]models.Instrument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []models.Instrument{{Symbol: "X.NS"}}, nil
}

type stubStore struct {
	mu       sync.Mutex
	inserted int
	done     chan struct{}
}

func (s *stubStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, iv domrepo.Interval) ([]models.Candle, error) {
	return nil, nil
}
func (s *stubStore) InsertCandles(ctx context.Context, symbol string, iv domrepo.Interval, candles []models.Candle) error {
	s.mu.Lock()
	s.inserted += len(candles)
	s.mu.Unlock()
	close(s.done)
	return nil
}
func (s *stubStore) Health(ctx context.Context) error { return nil }
func (s *stubStore) Close() error                     { return nil }

func newTestFetcher(store domrepo.CandleStore, provs ...domrepo.Provider) *Fetcher {
	return NewFetcher(providers.NewRegistry(provs...), nil, store, nil, nil, nil,
		FetcherOptions{Timeout: time.Second})
}

func TestFetcherShortCircuitsOnFirstSuccess(t *testing.T) {
	p1 := &stubProvider{name: "first", priority: 1, quote: &models.Quote{Symbol: "A", CurrentPrice: 10}}
	p2 := &stubProvider{name: "second", priority: 5, quote: &models.Quote{Symbol: "A", CurrentPrice: 99}}

	f := newTestFetcher(nil, p2, p1)
	q, err := f.Quote(context.Background(), "A")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.CurrentPrice != 10 {
		t.Fatalf("expected priority-1 answer, got %v", q.CurrentPrice)
	}
	if p2.Calls() != 0 {
		t.Fatalf("lower-priority provider was invoked %d times", p2.Calls())
	}
}

func TestFetcherFallsThroughToLastResort(t *testing.T) {
	failing := &stubProvider{name: "flaky", priority: 5,
		err: models.NewProviderError("flaky", models.FailUpstream, errors.New("boom"))}
	empty := &stubProvider{name: "dry", priority: 10,
		err: models.NewProviderError("dry", models.FailEmpty, nil)}
	last := &stubProvider{name: "last", priority: 20, quote: &models.Quote{Symbol: "A", CurrentPrice: 7}}

	f := newTestFetcher(nil, failing, empty, last)
	q, err := f.Quote(context.Background(), "A")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.CurrentPrice != 7 {
		t.Fatalf("expected last-resort answer, got %v", q.CurrentPrice)
	}
	if failing.Calls() != 1 || empty.Calls() != 1 {
		t.Fatalf("expected each failing provider tried once: %d, %d", failing.Calls(), empty.Calls())
	}
}

func TestFetcherAllFailuresIsNoData(t *testing.T) {
	a := &stubProvider{name: "a", priority: 5,
		err: models.NewProviderError("a", models.FailTimeout, context.DeadlineExceeded)}
	b := &stubProvider{name: "b", priority: 10,
		err: models.NewProviderError("b", models.FailEmpty, nil)}

	f := newTestFetcher(nil, a, b)
	_, err := f.Quote(context.Background(), "A")
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestFetcherNotFoundWins(t *testing.T) {
	a := &stubProvider{name: "a", priority: 5,
		err: models.NewProviderError("a", models.FailNotFound, nil)}
	b := &stubProvider{name: "b", priority: 10,
		err: models.NewProviderError("b", models.FailUpstream, errors.New("down"))}

	f := newTestFetcher(nil, a, b)
	_, err := f.Quote(context.Background(), "NOPE")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetcherCandlesWriteBack(t *testing.T) {
	series := []models.Candle{
		{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 12},
	}
	upstream := &stubProvider{name: "upstream", priority: 5, series: series}
	store := &stubStore{done: make(chan struct{})}

	f := newTestFetcher(store, upstream)
	got, err := f.Candles(context.Background(), "A", domrepo.Period1Mo, domrepo.Interval1D)
	if err != nil {
		t.Fatalf("candles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(got))
	}

	select {
	case <-store.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("write-back never happened")
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.inserted != 2 {
		t.Fatalf("expected 2 rows written back, got %d", store.inserted)
	}
}

func TestFetcherUntypedErrorClassifiedUpstream(t *testing.T) {
	a := &stubProvider{name: "a", priority: 5, err: errors.New("raw failure")}
	f := newTestFetcher(nil, a)

	_, err := f.Quote(context.Background(), "A")
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
