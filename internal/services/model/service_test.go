package model

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func dailySeries(n int, move func(i int) float64) []models.Candle {
	out := make([]models.Candle, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < n; i++ {
		open := price
		price += move(i)
		high := math.Max(open, price) + 0.2
		low := math.Min(open, price) - 0.2
		out[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			Volume:    1000 + float64(i%7)*10,
		}
	}
	return out
}

func testService() *Service {
	params := DefaultGBDTParams()
	params.Rounds = 20 // keep the test fast; behavior is identical
	return NewService(Config{MinCandles: 120, MinUniverseRows: 60, Params: params}, nil)
}

func TestPredictRisingSeries(t *testing.T) {
	svc := testService()
	candles := dailySeries(120, func(i int) float64 {
		return 0.4 + 0.2*math.Sin(float64(i)/4.0)
	})

	got, err := svc.Predict(context.Background(), "RELIANCE.NS", candles)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got.Direction != models.DirectionUp {
		t.Fatalf("expected UP on a strictly rising series, got %s (p=%v)", got.Direction, got.ProbabilityUp)
	}
	if got.ProbabilityUp < 0.5 {
		t.Fatalf("probability_up %v inconsistent with UP", got.ProbabilityUp)
	}
	if got.FeatureCount != 26 {
		t.Fatalf("feature count %d, want 26", got.FeatureCount)
	}
	if got.Validation.UniverseRows == 0 || len(got.Validation.Folds) == 0 {
		t.Fatalf("expected populated validation report: %+v", got.Validation)
	}
	if got.Validation.Baseline < 0.5 {
		t.Fatalf("up-label share should dominate a rising series: %v", got.Validation.Baseline)
	}
}

func TestPredictInsufficientCandles(t *testing.T) {
	svc := testService()
	candles := dailySeries(80, func(i int) float64 { return 0.3 })

	_, err := svc.Predict(context.Background(), "TCS.NS", candles)
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestPredictConfidenceLabels(t *testing.T) {
	cases := []struct {
		p    float64
		want string
	}{
		{0.70, models.ConfidenceHigh},
		{0.30, models.ConfidenceHigh},
		{0.60, models.ConfidenceMedium},
		{0.42, models.ConfidenceMedium},
		{0.52, models.ConfidenceLow},
		{0.50, models.ConfidenceLow},
	}
	for _, c := range cases {
		if got := confidenceLabel(c.p); got != c.want {
			t.Fatalf("confidenceLabel(%v) = %s, want %s", c.p, got, c.want)
		}
	}
}

func TestWalkForwardFoldBoundaries(t *testing.T) {
	// 100 labeled rows: folds must be [0,60)/[60,80), [0,70)/[70,90),
	// [0,80)/[80,100), each scoring 20 samples.
	n := 100
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		X[i] = []float64{float64(i), float64(i % 3)}
		y[i] = i % 2
	}
	params := DefaultGBDTParams()
	params.Rounds = 5

	report, err := walkForward(X, y, params)
	if err != nil {
		t.Fatalf("walk forward: %v", err)
	}
	if len(report.Folds) != 3 {
		t.Fatalf("expected 3 folds, got %d", len(report.Folds))
	}
	wantTrain := []int{60, 70, 80}
	wantTest := []int{80, 90, 100}
	for i, f := range report.Folds {
		if f.TrainEnd != wantTrain[i] || f.TestEnd != wantTest[i] {
			t.Fatalf("fold %d: got [%d,%d), want [%d,%d)", i, f.TrainEnd, f.TestEnd, wantTrain[i], wantTest[i])
		}
		if f.Samples != 20 {
			t.Fatalf("fold %d: %d samples, want 20", i, f.Samples)
		}
	}
	if report.SamplesTested != 60 {
		t.Fatalf("samples tested %d, want 60", report.SamplesTested)
	}
}

func TestWalkForwardSkipsThinFolds(t *testing.T) {
	// 40 rows: fold test slices are 8 samples each, all below the floor.
	n := 40
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		X[i] = []float64{float64(i)}
		y[i] = i % 2
	}
	params := DefaultGBDTParams()
	params.Rounds = 3

	report, err := walkForward(X, y, params)
	if err != nil {
		t.Fatalf("walk forward: %v", err)
	}
	if len(report.Folds) != 0 {
		t.Fatalf("expected all folds skipped, got %d", len(report.Folds))
	}
	if report.Aggregate != 0 {
		t.Fatalf("aggregate should be zero with no folds, got %v", report.Aggregate)
	}
}

func TestWalkForwardBaselineIsUpShare(t *testing.T) {
	// Baseline reports the share of up labels, not the majority class:
	// with 25% up labels it must be 0.25, not 0.75.
	n := 100
	X := make([][]float64, n)
	y := make([]int, n)
	up := 0
	for i := 0; i < n; i++ {
		X[i] = []float64{float64(i), float64(i % 3)}
		if i%4 == 0 {
			y[i] = 1
			up++
		}
	}
	params := DefaultGBDTParams()
	params.Rounds = 5

	report, err := walkForward(X, y, params)
	if err != nil {
		t.Fatalf("walk forward: %v", err)
	}
	want := float64(up) / float64(n)
	if math.Abs(report.Baseline-want) > 1e-12 {
		t.Fatalf("baseline %v, want up-label share %v", report.Baseline, want)
	}
}

func TestGBDTSeparableData(t *testing.T) {
	// Trivially separable on feature 0.
	n := 200
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		v := float64(i%2)*10 - 5
		X[i] = []float64{v, float64(i % 5)}
		if v > 0 {
			y[i] = 1
		}
	}
	// 40 rounds at lr 0.1 pushes the log-odds well past the 0.9
	// probability threshold on separable data.
	params := DefaultGBDTParams()
	params.Rounds = 40

	m, err := TrainGBDT(X, y, params)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if p := m.PredictProb([]float64{5, 0}); p < 0.9 {
		t.Fatalf("positive side probability %v, want > 0.9", p)
	}
	if p := m.PredictProb([]float64{-5, 0}); p > 0.1 {
		t.Fatalf("negative side probability %v, want < 0.1", p)
	}
	if m.NumTrees() != 40 {
		t.Fatalf("expected 40 trees, got %d", m.NumTrees())
	}
}

func TestGBDTDeterministic(t *testing.T) {
	n := 80
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		X[i] = []float64{math.Sin(float64(i)), math.Cos(float64(i) / 2)}
		if math.Sin(float64(i)) > 0 {
			y[i] = 1
		}
	}
	params := DefaultGBDTParams()
	params.Rounds = 15

	m1, err := TrainGBDT(X, y, params)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	m2, err := TrainGBDT(X, y, params)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	probe := []float64{0.3, -0.4}
	if p1, p2 := m1.PredictProb(probe), m2.PredictProb(probe); p1 != p2 {
		t.Fatalf("training not deterministic: %v vs %v", p1, p2)
	}
}
