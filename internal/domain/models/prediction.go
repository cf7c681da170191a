package models

import "time"

// Direction of the predicted next-period move.
const (
	DirectionUp   = "UP"
	DirectionDown = "DOWN"
)

// Confidence labels derived from the upward probability.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// FoldScore is the outcome of one walk-forward validation fold.
type FoldScore struct {
	TrainEnd int     `json:"train_end"` // universe row index, exclusive
	TestEnd  int     `json:"test_end"`  // universe row index, exclusive
	Samples  int     `json:"samples"`
	Accuracy float64 `json:"accuracy"`
}

// ValidationReport aggregates fold scores for one training run. It is
// created when a model is (re)trained and never mutated afterwards.
type ValidationReport struct {
	Folds         []FoldScore `json:"folds"`
	Aggregate     float64     `json:"aggregate_accuracy"`
	Baseline      float64     `json:"baseline_accuracy"`
	SamplesTested int         `json:"samples_tested"`
	UniverseRows  int         `json:"universe_rows"`
}

// PredictionResult is the immutable output of one train/predict cycle.
// A fresh cycle supersedes it; nothing mutates it in place.
type PredictionResult struct {
	Symbol        string           `json:"symbol"`
	Direction     string           `json:"direction"`
	ProbabilityUp float64          `json:"probability_up"`
	Confidence    string           `json:"confidence"`
	Validation    ValidationReport `json:"validation"`
	FeatureCount  int              `json:"feature_count"`
	LatestClose   float64          `json:"latest_close"`
	LastDate      string           `json:"last_date"`
	ComputedAt    time.Time        `json:"computed_at"`
	Candles       []Candle         `json:"candles,omitempty"` // trailing chart series
}
