package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/providers"
	"StockPulse/internal/service/ratelimit"
	applogger "StockPulse/pkg/logger"
)

// Fetcher walks the provider registry in priority order until one source
// answers. Every failed attempt is classified, recorded and logged; the
// first success short-circuits the walk, so lower-priority providers are
// never touched when a higher one delivers.
type Fetcher struct {
	registry  *providers.Registry
	limiter   *ratelimit.Limiter
	warehouse domrepo.CandleStore // optional write-back target
	metrics   domrepo.Metrics
	collector *applogger.FailureCollector
	l         *applogger.Logger

	timeout    time.Duration
	rlCapacity float64
	rlRefill   float64
}

// FetcherOptions configures the walk.
type FetcherOptions struct {
	Timeout            time.Duration
	RateLimitCapacity  float64
	RateLimitRefillSec float64
}

// NewFetcher creates the coordinator. warehouse, metrics and collector
// may be nil; the walk degrades gracefully without them.
func NewFetcher(
	registry *providers.Registry,
	limiter *ratelimit.Limiter,
	warehouse domrepo.CandleStore,
	metrics domrepo.Metrics,
	collector *applogger.FailureCollector,
	l *applogger.Logger,
	opts FetcherOptions,
) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RateLimitCapacity == 0 {
		opts.RateLimitCapacity = 5
	}
	if opts.RateLimitRefillSec == 0 {
		opts.RateLimitRefillSec = 1
	}
	return &Fetcher{
		registry:   registry,
		limiter:    limiter,
		warehouse:  warehouse,
		metrics:    metrics,
		collector:  collector,
		l:          l,
		timeout:    opts.Timeout,
		rlCapacity: opts.RateLimitCapacity,
		rlRefill:   opts.RateLimitRefillSec,
	}
}

// Quote walks quote-capable providers and returns the first snapshot.
func (f *Fetcher) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	v, err := walk(ctx, f, domrepo.CapQuote, symbol,
		func(ctx context.Context, p domrepo.Provider) (*models.Quote, error) {
			return p.Quote(ctx, symbol)
		})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Candles walks candle-capable providers. A series fetched from an
// upstream (anything but the warehouse itself) is written back
// asynchronously so the next request is local.
func (f *Fetcher) Candles(ctx context.Context, symbol string, period domrepo.Period, interval domrepo.Interval) ([]models.Candle, error) {
	type result struct {
		candles  []models.Candle
		provider string
	}
	v, err := walk(ctx, f, domrepo.CapCandles, symbol,
		func(ctx context.Context, p domrepo.Provider) (result, error) {
			candles, err := p.Candles(ctx, symbol, period, interval)
			return result{candles: candles, provider: p.Name()}, err
		})
	if err != nil {
		return nil, err
	}
	if f.warehouse != nil && v.provider != "warehouse" {
		f.writeBack(symbol, interval, v.candles)
	}
	return v.candles, nil
}

// Search walks search-capable providers.
func (f *Fetcher) Search(ctx context.Context, query string, limit int) ([]models.Instrument, error) {
	return walk(ctx, f, domrepo.CapSearch, query,
		func(ctx context.Context, p domrepo.Provider) ([]models.Instrument, error) {
			return p.Search(ctx, query, limit)
		})
}

// writeBack persists an upstream series in the background; failures are
// logged and forgotten, the caller already has its data.
func (f *Fetcher) writeBack(symbol string, interval domrepo.Interval, candles []models.Candle) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := f.warehouse.InsertCandles(ctx, symbol, interval, candles); err != nil {
			if f.l != nil {
				f.l.Warn("warehouse write-back failed",
					applogger.String("symbol", symbol),
					applogger.String("interval", string(interval)),
					applogger.Error(err),
				)
			}
		}
	}()
}

// walk runs one attempt per capable provider, in priority order.
func walk[T any](ctx context.Context, f *Fetcher, capability domrepo.Capability, subject string, attempt func(context.Context, domrepo.Provider) (T, error)) (T, error) {
	var zero T
	provs := f.registry.For(capability)
	if len(provs) == 0 {
		return zero, fmt.Errorf("%w: no providers for %s", models.ErrNoData, capability)
	}

	start := time.Now()
	sawNotFound := false

	for _, p := range provs {
		if f.limiter != nil && !f.limiter.Allow(p.Name(), f.rlCapacity, f.rlRefill) {
			f.recordFailure(p.Name(), capability, subject,
				models.NewProviderError(p.Name(), models.FailRateLimited, fmt.Errorf("local budget exhausted")))
			continue
		}

		attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
		v, err := attempt(attemptCtx, p)
		cancel()

		if err == nil {
			f.registry.RecordSuccess(p.Name())
			if f.metrics != nil {
				f.metrics.RecordProviderAttempt(p.Name(), "success")
				f.metrics.RecordFetchLatency(string(capability), time.Since(start).Seconds())
			}
			return v, nil
		}

		perr := asProviderError(p.Name(), err)
		if perr.Kind == models.FailNotFound {
			sawNotFound = true
		}
		f.recordFailure(p.Name(), capability, subject, perr)
	}

	if sawNotFound {
		return zero, fmt.Errorf("%w: %s", models.ErrNotFound, subject)
	}
	return zero, fmt.Errorf("%w: %s %s", models.ErrNoData, capability, subject)
}

func (f *Fetcher) recordFailure(provider string, capability domrepo.Capability, subject string, perr *models.ProviderError) {
	f.registry.RecordFailure(provider, perr.Error())
	if f.metrics != nil {
		f.metrics.RecordProviderAttempt(provider, string(perr.Kind))
	}
	if f.collector != nil {
		f.collector.Record(provider, string(perr.Kind), perr.Error())
	}
	if f.l != nil {
		f.l.Debug("provider attempt failed",
			applogger.String("provider", provider),
			applogger.String("capability", string(capability)),
			applogger.String("subject", subject),
			applogger.String("kind", string(perr.Kind)),
			applogger.Error(perr.Err),
		)
	}
}

// asProviderError normalizes any attempt error into the failure taxonomy.
func asProviderError(provider string, err error) *models.ProviderError {
	var perr *models.ProviderError
	if errors.As(err, &perr) {
		return perr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewProviderError(provider, models.FailTimeout, err)
	}
	return models.NewProviderError(provider, models.FailUpstream, err)
}
