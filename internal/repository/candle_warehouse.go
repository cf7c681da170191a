package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgch "StockPulse/pkg/clickhouse"
	applogger "StockPulse/pkg/logger"
)

// warehouseSchema creates the candle table. ReplacingMergeTree collapses
// re-inserted bars from the write-back path on merge.
var warehouseSchema = []string{
	`CREATE TABLE IF NOT EXISTS candles (
        symbol   LowCardinality(String),
        interval LowCardinality(String),
        ts       DateTime,
        open     Float64,
        high     Float64,
        low      Float64,
        close    Float64,
        volume   Float64
    ) ENGINE = ReplacingMergeTree()
    ORDER BY (symbol, interval, ts)`,
}

// CandleWarehouse is the ClickHouse-backed candle store. It doubles as
// the priority-1 candle provider: series fetched from upstreams are
// written back asynchronously, so repeat requests are served locally.
type CandleWarehouse struct {
	db *sql.DB
	ch *pkgch.Client
	l  *applogger.Logger
}

// NewCandleWarehouse creates the warehouse and ensures the schema exists.
func NewCandleWarehouse(ch *pkgch.Client, l *applogger.Logger) (*CandleWarehouse, error) {
	w := &CandleWarehouse{db: ch.DB(), ch: ch, l: l}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ch.InitSchema(ctx, warehouseSchema); err != nil {
		return nil, fmt.Errorf("warehouse schema: %w", err)
	}
	return w, nil
}

func (w *CandleWarehouse) Name() string  { return "warehouse" }
func (w *CandleWarehouse) Priority() int { return 1 }

func (w *CandleWarehouse) Supports(c domrepo.Capability) bool { return c == domrepo.CapCandles }

func (w *CandleWarehouse) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return nil, models.NewProviderError("warehouse", models.FailUpstream, fmt.Errorf("quote not supported"))
}

func (w *CandleWarehouse) Search(ctx context.Context, query string, limit int) ([]models.Instrument, error) {
	return nil, models.NewProviderError("warehouse", models.FailUpstream, fmt.Errorf("search not supported"))
}

// staleAfter bounds how old the newest stored bar may be before the
// warehouse declines and the walk goes upstream. Daily series tolerate a
// weekend gap.
func staleAfter(iv domrepo.Interval) time.Duration {
	if domrepo.IsIntraday(iv) {
		return 4 * domrepo.IntervalDuration(iv)
	}
	return 4 * 24 * time.Hour
}

// Candles serves a period window from local storage. An empty or stale
// window is reported as an empty failure so the coordinator falls
// through to an upstream.
func (w *CandleWarehouse) Candles(ctx context.Context, symbol string, period domrepo.Period, interval domrepo.Interval) ([]models.Candle, error) {
	now := time.Now().UTC()
	from := domrepo.PeriodStart(period, now)

	candles, err := w.GetCandles(ctx, symbol, from, now, interval)
	if err != nil {
		return nil, models.NewProviderError("warehouse", models.FailUpstream, err)
	}
	if len(candles) == 0 {
		return nil, models.NewProviderError("warehouse", models.FailEmpty, nil)
	}
	newest := candles[len(candles)-1].Timestamp
	if now.Sub(newest) > staleAfter(interval) {
		return nil, models.NewProviderError("warehouse", models.FailEmpty, fmt.Errorf("stale, newest bar %s", newest.Format(time.RFC3339)))
	}
	return candles, nil
}

// GetCandles reads the stored window ordered ascending.
func (w *CandleWarehouse) GetCandles(ctx context.Context, symbol string, from, to time.Time, interval domrepo.Interval) ([]models.Candle, error) {
	const q = `
        SELECT ts, open, high, low, close, volume
        FROM candles FINAL
        WHERE symbol = ? AND interval = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC
    `
	rows, err := w.db.QueryContext(ctx, q, symbol, string(interval), from, to)
	if err != nil {
		if w.l != nil {
			w.l.Error("warehouse get_candles query error",
				applogger.String("symbol", symbol),
				applogger.String("interval", string(interval)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 512)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		c.Timestamp = c.Timestamp.UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// InsertCandles writes a series in one batched transaction.
func (w *CandleWarehouse) InsertCandles(ctx context.Context, symbol string, interval domrepo.Interval, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO candles (symbol, interval, ts, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, symbol, string(interval), c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec batch: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	if w.l != nil {
		w.l.Debug("warehouse insert_candles ok",
			applogger.String("symbol", symbol),
			applogger.String("interval", string(interval)),
			applogger.Int("rows", len(candles)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

// Health pings the connection pool.
func (w *CandleWarehouse) Health(ctx context.Context) error { return w.ch.Health(ctx) }

// Close closes the pool.
func (w *CandleWarehouse) Close() error { return w.ch.Close() }
