package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

// Catalog is the priority-1 local instrument directory, loaded once from
// a JSON seed file. It answers symbol lookups and free-text search
// without touching any upstream.
type Catalog struct {
	mu          sync.RWMutex
	instruments []models.Instrument
	bySymbol    map[string]models.Instrument
}

// NewCatalog loads the instrument seed from path.
func NewCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var instruments []models.Instrument
	if err := json.Unmarshal(raw, &instruments); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	c := &Catalog{bySymbol: make(map[string]models.Instrument, len(instruments))}
	for _, ins := range instruments {
		if ins.Symbol == "" {
			continue
		}
		key := strings.ToUpper(ins.Symbol)
		if _, dup := c.bySymbol[key]; dup {
			continue
		}
		c.bySymbol[key] = ins
		c.instruments = append(c.instruments, ins)
	}
	return c, nil
}

func (c *Catalog) Name() string  { return "catalog" }
func (c *Catalog) Priority() int { return 1 }

func (c *Catalog) Supports(cap domrepo.Capability) bool {
	return cap == domrepo.CapCatalog || cap == domrepo.CapSearch
}

// Lookup resolves an exact symbol, case-insensitively.
func (c *Catalog) Lookup(symbol string) (models.Instrument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ins, ok := c.bySymbol[strings.ToUpper(symbol)]
	return ins, ok
}

// Len reports the number of loaded instruments.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.instruments)
}

func (c *Catalog) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return nil, models.NewProviderError("catalog", models.FailUpstream, fmt.Errorf("quote not supported"))
}

func (c *Catalog) Candles(ctx context.Context, symbol string, p domrepo.Period, iv domrepo.Interval) ([]models.Candle, error) {
	return nil, models.NewProviderError("catalog", models.FailUpstream, fmt.Errorf("candles not supported"))
}

// Search matches the query against symbols and names. Exact symbol hits
// rank first, then symbol prefixes, then substring matches anywhere.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]models.Instrument, error) {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return nil, models.NewProviderError("catalog", models.FailEmpty, nil)
	}

	type ranked struct {
		ins  models.Instrument
		rank int
	}

	c.mu.RLock()
	matches := make([]ranked, 0, 8)
	for _, ins := range c.instruments {
		sym := strings.ToUpper(ins.Symbol)
		name := strings.ToUpper(ins.Name)
		base := strings.TrimSuffix(sym, ".NS")
		switch {
		case sym == q || base == q:
			matches = append(matches, ranked{ins, 0})
		case strings.HasPrefix(sym, q):
			matches = append(matches, ranked{ins, 1})
		case strings.Contains(sym, q) || strings.Contains(name, q):
			matches = append(matches, ranked{ins, 2})
		}
	}
	c.mu.RUnlock()

	if len(matches) == 0 {
		return nil, models.NewProviderError("catalog", models.FailEmpty, nil)
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].rank < matches[j].rank })

	out := make([]models.Instrument, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.ins)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
