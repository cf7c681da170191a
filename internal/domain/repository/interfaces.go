package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// Capability names one kind of request a data provider can serve.
type Capability string

const (
	CapCatalog Capability = "catalog"
	CapQuote   Capability = "quote"
	CapCandles Capability = "candles"
	CapSearch  Capability = "search"
)

// Provider is one upstream (or local) data source. Implementations declare
// a priority (lower = tried first) and the capabilities they serve, and
// normalize their native payloads into the canonical Candle/Quote shapes.
// Methods for unsupported capabilities are never invoked by the coordinator.
type Provider interface {
	Name() string
	Priority() int
	Supports(c Capability) bool

	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	Candles(ctx context.Context, symbol string, period Period, interval Interval) ([]models.Candle, error)
	Search(ctx context.Context, query string, limit int) ([]models.Instrument, error)
}

// CandleStore persists candle series locally so the warehouse provider can
// answer without touching an upstream.
type CandleStore interface {
	GetCandles(ctx context.Context, symbol string, from, to time.Time, interval Interval) ([]models.Candle, error)
	InsertCandles(ctx context.Context, symbol string, interval Interval, candles []models.Candle) error
	Health(ctx context.Context) error
	Close() error
}

// Publisher emits domain events (fresh predictions) to an external bus.
type Publisher interface {
	PublishPrediction(ctx context.Context, p *models.PredictionResult) error
	Close() error
}

// Metrics is the domain-facing metrics recorder.
type Metrics interface {
	RecordProviderAttempt(provider string, outcome string)
	RecordFetchLatency(capability string, seconds float64)
	RecordCacheHit(op string)
	RecordCacheMiss(op string)
	RecordTrainingDuration(seconds float64)
	RecordPrediction(direction string)
	RecordLastPrice(symbol string, price float64)
}
