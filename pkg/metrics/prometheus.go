package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	providerAttempts *prometheus.CounterVec
	fetchLatency     *prometheus.HistogramVec
	cacheOps         *prometheus.CounterVec
	trainingDuration prometheus.Histogram
	predictions      *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		providerAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_provider_attempts_total",
				Help: "Provider fetch attempts by outcome",
			},
			[]string{"provider", "outcome"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_fetch_duration_seconds",
				Help:    "Duration of coordinated fetches by capability",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"capability"},
		),
		cacheOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_ops_total",
				Help: "Cache lookups by operation and result",
			},
			[]string{"op", "result"},
		),
		trainingDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stockpulse_training_duration_seconds",
				Help:    "Walk-forward training cycle duration",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		predictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_predictions_total",
				Help: "Predictions produced by direction",
			},
			[]string{"direction"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockpulse_last_price",
				Help: "Last quoted price for a symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordProviderAttempt records one provider call outcome
// (ok, empty, timeout, rate_limited, not_found, malformed, upstream).
func (r *Recorder) RecordProviderAttempt(provider, outcome string) {
	r.providerAttempts.WithLabelValues(provider, outcome).Inc()
}

// RecordFetchLatency records a coordinated fetch duration in seconds.
func (r *Recorder) RecordFetchLatency(capability string, seconds float64) {
	r.fetchLatency.WithLabelValues(capability).Observe(seconds)
}

// RecordCacheHit records a cache hit for an operation.
func (r *Recorder) RecordCacheHit(op string) {
	r.cacheOps.WithLabelValues(op, "hit").Inc()
}

// RecordCacheMiss records a cache miss for an operation.
func (r *Recorder) RecordCacheMiss(op string) {
	r.cacheOps.WithLabelValues(op, "miss").Inc()
}

// RecordTrainingDuration records one training cycle duration in seconds.
func (r *Recorder) RecordTrainingDuration(seconds float64) {
	r.trainingDuration.Observe(seconds)
}

// RecordPrediction counts a produced prediction by direction.
func (r *Recorder) RecordPrediction(direction string) {
	r.predictions.WithLabelValues(direction).Inc()
}

// RecordLastPrice records the last quoted price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}
