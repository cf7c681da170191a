package model

import (
	"StockPulse/internal/domain/models"
)

// foldSpec is one walk-forward window, expressed as fractions of the
// universe: train on [0, TrainFrac), test on [TrainFrac, TestFrac).
type foldSpec struct {
	TrainFrac float64
	TestFrac  float64
}

// walkForwardFolds are the fixed validation windows. The later windows
// overlap on purpose: each fold re-trains on a longer prefix and scores
// the 20% slice that follows it.
var walkForwardFolds = []foldSpec{
	{0.6, 0.8},
	{0.7, 0.9},
	{0.8, 1.0},
}

// minFoldSamples is the smallest test slice a fold may score; thinner
// slices produce accuracy values too noisy to aggregate.
const minFoldSamples = 10

// walkForward runs the fixed folds over the labeled universe and returns
// a validation report. Folds whose test slice is too small are skipped.
func walkForward(X [][]float64, y []int, params GBDTParams) (models.ValidationReport, error) {
	n := len(X)
	report := models.ValidationReport{UniverseRows: n}

	for _, spec := range walkForwardFolds {
		trainEnd := int(spec.TrainFrac * float64(n))
		testEnd := int(spec.TestFrac * float64(n))
		if testEnd > n {
			testEnd = n
		}
		samples := testEnd - trainEnd
		if samples < minFoldSamples || trainEnd < 2 {
			continue
		}

		m, err := TrainGBDT(X[:trainEnd], y[:trainEnd], params)
		if err != nil {
			return report, err
		}
		correct := 0
		for i := trainEnd; i < testEnd; i++ {
			pred := 0
			if m.PredictProb(X[i]) >= 0.5 {
				pred = 1
			}
			if pred == y[i] {
				correct++
			}
		}
		report.Folds = append(report.Folds, models.FoldScore{
			TrainEnd: trainEnd,
			TestEnd:  testEnd,
			Samples:  samples,
			Accuracy: float64(correct) / float64(samples),
		})
		report.SamplesTested += samples
	}

	if len(report.Folds) > 0 {
		sum := 0.0
		for _, f := range report.Folds {
			sum += f.Accuracy
		}
		report.Aggregate = sum / float64(len(report.Folds))
	}

	// Baseline: the accuracy of always guessing "up", i.e. the share of
	// up labels in the universe.
	up := 0
	for _, v := range y {
		if v == 1 {
			up++
		}
	}
	report.Baseline = float64(up) / float64(n)
	return report, nil
}
