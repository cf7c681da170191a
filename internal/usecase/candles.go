package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	svccache "StockPulse/internal/service/cache"
	pkgcache "StockPulse/pkg/cache"
)

// ErrInvalidRange marks an unsupported period/interval combination; the
// HTTP layer maps it to a validation failure.
var ErrInvalidRange = errors.New("unsupported period/interval combination")

// CandlesUseCase serves candle history behind the TTL cache. Daily series
// and intraday series carry different TTLs: intraday bars go stale in
// seconds, daily ones survive half an hour.
type CandlesUseCase struct {
	fetcher     *Fetcher
	cache       *svccache.Store
	ttlDaily    time.Duration
	ttlIntraday time.Duration
}

func NewCandlesUseCase(fetcher *Fetcher, cache *svccache.Store, ttlDaily, ttlIntraday time.Duration) *CandlesUseCase {
	return &CandlesUseCase{fetcher: fetcher, cache: cache, ttlDaily: ttlDaily, ttlIntraday: ttlIntraday}
}

// GetCandlesResult is the candle history payload.
type GetCandlesResult struct {
	Symbol   string          `json:"symbol"`
	Period   string          `json:"period"`
	Interval string          `json:"interval"`
	Count    int             `json:"count"`
	Candles  []models.Candle `json:"candles"`
}

// GetCandles validates the range and serves the series from cache or the
// provider walk.
func (uc *CandlesUseCase) GetCandles(ctx context.Context, symbol string, period domrepo.Period, interval domrepo.Interval) (*GetCandlesResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if period == "" {
		period = domrepo.DefaultPeriod()
	}
	if interval == "" {
		interval = domrepo.DefaultInterval()
	}
	if !domrepo.IntervalMatchesPeriod(period, interval) {
		return nil, fmt.Errorf("%w: period=%s interval=%s", ErrInvalidRange, period, interval)
	}

	op := "candles_daily"
	ttl := uc.ttlDaily
	if domrepo.IsIntraday(interval) {
		op = "candles_intraday"
		ttl = uc.ttlIntraday
	}

	key := pkgcache.Key("candles", symbol, string(period), string(interval))
	candles, err := svccache.GetOrCompute(ctx, uc.cache, op, key, ttl,
		func(ctx context.Context) ([]models.Candle, error) {
			return uc.fetcher.Candles(ctx, symbol, period, interval)
		})
	if err != nil {
		return nil, err
	}

	return &GetCandlesResult{
		Symbol:   symbol,
		Period:   string(period),
		Interval: string(interval),
		Count:    len(candles),
		Candles:  candles,
	}, nil
}
