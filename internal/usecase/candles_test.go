package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	svccache "StockPulse/internal/service/cache"
	pkgcache "StockPulse/pkg/cache"
)

func dailyStub(n int) []models.Candle {
	out := make([]models.Candle, n)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		p := 100.0 + float64(i)
		out[i] = models.Candle{Timestamp: base.AddDate(0, 0, i), Open: p, High: p + 1, Low: p - 1, Close: p + 0.5, Volume: 100}
	}
	return out
}

func newCandlesUC(p domrepo.Provider) (*CandlesUseCase, *svccache.Store) {
	store := svccache.NewStore(pkgcache.NewMemoryCache())
	f := newTestFetcher(nil, p)
	return NewCandlesUseCase(f, store, 30*time.Minute, 30*time.Second), store
}

func TestGetCandlesReturnsOrderedSeries(t *testing.T) {
	p := &stubProvider{name: "src", priority: 5, series: dailyStub(10)}
	uc, _ := newCandlesUC(p)

	got, err := uc.GetCandles(context.Background(), "abc.ns", domrepo.Period1Mo, domrepo.Interval1D)
	if err != nil {
		t.Fatalf("get candles: %v", err)
	}
	if got.Symbol != "ABC.NS" {
		t.Fatalf("symbol not normalized: %s", got.Symbol)
	}
	if got.Count != 10 || len(got.Candles) != 10 {
		t.Fatalf("expected 10 candles, got %d", got.Count)
	}
	for i := 1; i < len(got.Candles); i++ {
		if !got.Candles[i-1].Timestamp.Before(got.Candles[i].Timestamp) {
			t.Fatalf("series not ascending at %d", i)
		}
	}
}

func TestGetCandlesCachesSeries(t *testing.T) {
	p := &stubProvider{name: "src", priority: 5, series: dailyStub(5)}
	uc, _ := newCandlesUC(p)

	for i := 0; i < 3; i++ {
		if _, err := uc.GetCandles(context.Background(), "ABC.NS", domrepo.Period1Mo, domrepo.Interval1D); err != nil {
			t.Fatalf("get candles: %v", err)
		}
	}
	if p.Calls() != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", p.Calls())
	}
}

func TestGetCandlesDefaults(t *testing.T) {
	p := &stubProvider{name: "src", priority: 5, series: dailyStub(5)}
	uc, _ := newCandlesUC(p)

	got, err := uc.GetCandles(context.Background(), "ABC.NS", "", "")
	if err != nil {
		t.Fatalf("get candles: %v", err)
	}
	if got.Period != "6mo" || got.Interval != "1d" {
		t.Fatalf("unexpected defaults: period=%s interval=%s", got.Period, got.Interval)
	}
}

func TestGetCandlesRejectsIntradayOverLongPeriod(t *testing.T) {
	p := &stubProvider{name: "src", priority: 5, series: dailyStub(5)}
	uc, _ := newCandlesUC(p)

	_, err := uc.GetCandles(context.Background(), "ABC.NS", domrepo.Period1Y, domrepo.Interval5m)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if p.Calls() != 0 {
		t.Fatalf("invalid range must not reach providers")
	}
}

func TestGetCandlesFailureNotCached(t *testing.T) {
	p := &stubProvider{name: "src", priority: 5,
		err: models.NewProviderError("src", models.FailUpstream, errors.New("down"))}
	uc, _ := newCandlesUC(p)

	if _, err := uc.GetCandles(context.Background(), "ABC.NS", domrepo.Period1Mo, domrepo.Interval1D); err == nil {
		t.Fatalf("expected failure")
	}

	p.mu.Lock()
	p.err = nil
	p.series = dailyStub(5)
	p.mu.Unlock()

	got, err := uc.GetCandles(context.Background(), "ABC.NS", domrepo.Period1Mo, domrepo.Interval1D)
	if err != nil {
		t.Fatalf("expected recovery after upstream healed: %v", err)
	}
	if got.Count != 5 {
		t.Fatalf("expected fresh series, got %d candles", got.Count)
	}
}
