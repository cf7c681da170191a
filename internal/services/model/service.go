// Package model trains a boosted-tree classifier over the feature matrix
// and predicts the direction of the next move, validated walk-forward so
// every scored sample is strictly out of training.
package model

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/features"
	applogger "StockPulse/pkg/logger"
)

// Config bounds the training procedure.
type Config struct {
	MinCandles      int
	MinUniverseRows int
	Params          GBDTParams
}

// Service runs one full train/validate/predict cycle per call. It keeps
// no model state between calls; the caching layer in front of it decides
// how long a result lives.
type Service struct {
	cfg Config
	l   *applogger.Logger
}

// NewService creates the prediction service.
func NewService(cfg Config, l *applogger.Logger) *Service {
	if cfg.Params.Rounds == 0 {
		cfg.Params = DefaultGBDTParams()
	}
	return &Service{cfg: cfg, l: l}
}

// Predict extracts features from the candle history, validates the model
// walk-forward, refits on the complete labeled universe and classifies
// the most recent defined row.
func (s *Service) Predict(ctx context.Context, symbol string, candles []models.Candle) (*models.PredictionResult, error) {
	if len(candles) < s.cfg.MinCandles {
		return nil, fmt.Errorf("%w: %d candles, need %d",
			models.ErrInsufficientHistory, len(candles), s.cfg.MinCandles)
	}

	matrix, err := features.Extract(candles)
	if err != nil {
		return nil, err
	}

	X, y := buildUniverse(matrix)
	if len(X) < s.cfg.MinUniverseRows {
		return nil, fmt.Errorf("%w: %d defined rows, need %d",
			models.ErrInsufficientHistory, len(X), s.cfg.MinUniverseRows)
	}

	start := time.Now()
	report, err := walkForward(X, y, s.cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("walk-forward validation: %w", err)
	}

	// The deployed model sees every labeled row; the fold scores above
	// are the only honest accuracy estimate for it.
	deployed, err := TrainGBDT(X, y, s.cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("train deployed model: %w", err)
	}

	// Classify the newest fully-defined row. It usually has no label yet,
	// which is exactly the point.
	last := matrix.LastDefined()
	if last < 0 {
		return nil, fmt.Errorf("%w: no defined feature rows", models.ErrInsufficientHistory)
	}
	probUp := deployed.PredictProb(matrix.Rows[last])

	direction := models.DirectionDown
	if probUp >= 0.5 {
		direction = models.DirectionUp
	}

	result := &models.PredictionResult{
		Symbol:        symbol,
		Direction:     direction,
		ProbabilityUp: probUp,
		Confidence:    confidenceLabel(probUp),
		Validation:    report,
		FeatureCount:  len(features.Columns),
		LatestClose:   matrix.Closes[len(matrix.Closes)-1],
		LastDate:      matrix.Timestamps[len(matrix.Timestamps)-1].Format("2006-01-02"),
		ComputedAt:    time.Now().UTC(),
	}

	if s.l != nil {
		s.l.Info("prediction computed",
			applogger.String("symbol", symbol),
			applogger.String("direction", direction),
			applogger.Float64("probability_up", probUp),
			applogger.Float64("aggregate_accuracy", report.Aggregate),
			applogger.Int("universe_rows", report.UniverseRows),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return result, nil
}

// buildUniverse collects fully-defined feature rows that have a next
// close to label against. The last defined row is excluded: its label
// does not exist yet.
func buildUniverse(m *features.Matrix) (X [][]float64, y []int) {
	n := len(m.Rows)
	for i := 0; i < n-1; i++ {
		if !m.Defined(i) {
			continue
		}
		X = append(X, m.Rows[i])
		if m.Closes[i+1] > m.Closes[i] {
			y = append(y, 1)
		} else {
			y = append(y, 0)
		}
	}
	return X, y
}

// confidenceLabel buckets the probability of the predicted class.
func confidenceLabel(probUp float64) string {
	p := probUp
	if p < 0.5 {
		p = 1 - p
	}
	switch {
	case p >= 0.65:
		return models.ConfidenceHigh
	case p >= 0.55:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
