package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/repository"
	svccache "StockPulse/internal/service/cache"
	pkgcache "StockPulse/pkg/cache"
)

// QuotesUseCase serves instrument detail snapshots: the provider quote
// enriched with catalog reference data, behind the quote TTL.
type QuotesUseCase struct {
	fetcher *Fetcher
	catalog *repository.Catalog
	cache   *svccache.Store
	metrics domrepo.Metrics
	ttl     time.Duration
}

func NewQuotesUseCase(fetcher *Fetcher, catalog *repository.Catalog, cache *svccache.Store, metrics domrepo.Metrics, ttl time.Duration) *QuotesUseCase {
	return &QuotesUseCase{fetcher: fetcher, catalog: catalog, cache: cache, metrics: metrics, ttl: ttl}
}

// GetDetails returns the current snapshot for a symbol.
func (uc *QuotesUseCase) GetDetails(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}

	key := pkgcache.Key("quote", symbol)
	quote, err := svccache.GetOrCompute(ctx, uc.cache, "quote", key, uc.ttl,
		func(ctx context.Context) (*models.Quote, error) {
			q, err := uc.fetcher.Quote(ctx, symbol)
			if err != nil {
				return nil, err
			}
			uc.enrich(q, symbol)
			return q, nil
		})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil && quote.CurrentPrice > 0 {
		uc.metrics.RecordLastPrice(quote.Symbol, quote.CurrentPrice)
	}
	return quote, nil
}

// enrich fills reference fields the upstream quote lacks from the local
// catalog. Providers keep price authority; the catalog keeps identity.
func (uc *QuotesUseCase) enrich(q *models.Quote, symbol string) {
	if q.Symbol == "" {
		q.Symbol = symbol
	}
	ins, ok := uc.catalog.Lookup(symbol)
	if !ok {
		return
	}
	if q.Name == "" {
		q.Name = ins.Name
	}
	if q.Sector == "" {
		q.Sector = ins.Sector
	}
	if q.Exchange == "" {
		q.Exchange = ins.Exchange
	}
}
