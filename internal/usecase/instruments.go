package usecase

import (
	"fmt"
	"strings"
	"time"

	"context"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/repository"
	svccache "StockPulse/internal/service/cache"
	pkgcache "StockPulse/pkg/cache"
)

// InstrumentsUseCase resolves symbols and free-text queries against the
// local catalog first, upstream search second. Results live in the cache
// on the long catalog TTL since reference data rarely changes.
type InstrumentsUseCase struct {
	fetcher *Fetcher
	catalog *repository.Catalog
	cache   *svccache.Store
	ttl     time.Duration
}

func NewInstrumentsUseCase(fetcher *Fetcher, catalog *repository.Catalog, cache *svccache.Store, ttl time.Duration) *InstrumentsUseCase {
	return &InstrumentsUseCase{fetcher: fetcher, catalog: catalog, cache: cache, ttl: ttl}
}

// Search runs a cached free-text instrument search.
func (uc *InstrumentsUseCase) Search(ctx context.Context, query string, limit int) ([]models.Instrument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query required")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	key := pkgcache.Key("search", strings.ToLower(query), limit)
	return svccache.GetOrCompute(ctx, uc.cache, "search", key, uc.ttl,
		func(ctx context.Context) ([]models.Instrument, error) {
			return uc.fetcher.Search(ctx, query, limit)
		})
}

// Lookup resolves an exact symbol. The catalog answers directly; unknown
// symbols fall through to a search walk and must match exactly.
func (uc *InstrumentsUseCase) Lookup(ctx context.Context, symbol string) (models.Instrument, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return models.Instrument{}, fmt.Errorf("symbol required")
	}
	if ins, ok := uc.catalog.Lookup(symbol); ok {
		return ins, nil
	}

	results, err := uc.Search(ctx, symbol, 10)
	if err != nil {
		return models.Instrument{}, err
	}
	for _, ins := range results {
		if strings.EqualFold(ins.Symbol, symbol) {
			return ins, nil
		}
	}
	return models.Instrument{}, fmt.Errorf("%w: %s", models.ErrNotFound, symbol)
}
