package features

import (
	"fmt"
	"math"
	"time"

	"StockPulse/internal/domain/models"
)

// Columns is the fixed feature schema, in matrix column order. The model
// layer depends on this ordering being stable.
var Columns = []string{
	"Return1", "Return5", "Return10", "Return20",
	"LogReturn1",
	"Volatility10", "Volatility20",
	"SMA10", "SMA20", "SMA50",
	"EMA10", "EMA20",
	"RSI14",
	"MACD", "MACDSignal",
	"StochK", "StochD",
	"BBUpper", "BBLower", "BBWidth",
	"ATR14",
	"HLRange", "Gap",
	"VolumeChange", "VolumeSMA20", "VolumeRatio",
}

// Matrix is the extracted feature table: one row per candle, one column
// per indicator. Cells whose lookback is not yet satisfied hold NaN.
type Matrix struct {
	Timestamps []time.Time
	Closes     []float64
	Rows       [][]float64
}

// Defined reports whether every column of row i has a value.
func (m *Matrix) Defined(i int) bool {
	for _, v := range m.Rows[i] {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// FirstDefined returns the index of the first fully-defined row, or -1.
func (m *Matrix) FirstDefined() int {
	for i := range m.Rows {
		if m.Defined(i) {
			return i
		}
	}
	return -1
}

// LastDefined returns the index of the last fully-defined row, or -1.
func (m *Matrix) LastDefined() int {
	for i := len(m.Rows) - 1; i >= 0; i-- {
		if m.Defined(i) {
			return i
		}
	}
	return -1
}

// Extract validates the series and computes all feature columns. The
// input must already be normalized (ascending, unique timestamps).
func Extract(candles []models.Candle) (*Matrix, error) {
	if err := models.ValidateSeries(candles); err != nil {
		return nil, err
	}
	n := len(candles)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty series", models.ErrMalformedSeries)
	}

	opens := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	timestamps := make([]time.Time, n)
	for i, c := range candles {
		opens[i] = c.Open
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
		volumes[i] = c.Volume
		timestamps[i] = c.Timestamp
	}

	ret1 := returns(closes, 1)
	ret5 := returns(closes, 5)
	ret10 := returns(closes, 10)
	ret20 := returns(closes, 20)
	logRet := logReturns(closes)
	// Volatility is the rolling std of the simple 1-bar return. The NaN
	// at index 0 propagates through the window sums, so the volatility
	// columns become defined one bar after the window fills.
	vol10 := RollingStd(ret1, 10)
	vol20 := RollingStd(ret1, 20)
	sma10 := SMA(closes, 10)
	sma20 := SMA(closes, 20)
	sma50 := SMA(closes, 50)
	ema10 := EMA(closes, 10)
	ema20 := EMA(closes, 20)
	rsi14 := RSI(closes, 14)
	macd, macdSig := MACD(closes, 12, 26, 9)
	stochK, stochD := Stochastic(highs, lows, closes, 14, 3)
	bbMid := SMA(closes, 20)
	bbStd := RollingStd(closes, 20)
	atr14 := ATR(highs, lows, closes, 14)
	volSMA20 := SMA(volumes, 20)

	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		bbUpper, bbLower, bbWidth := nan, nan, nan
		if !math.IsNaN(bbMid[i]) && !math.IsNaN(bbStd[i]) {
			bbUpper = bbMid[i] + 2*bbStd[i]
			bbLower = bbMid[i] - 2*bbStd[i]
			bbWidth = (bbUpper - bbLower) / (bbMid[i] + eps)
		}
		gap, volChange := nan, nan
		if i >= 1 {
			gap = (opens[i] - closes[i-1]) / (closes[i-1] + eps)
			volChange = (volumes[i] - volumes[i-1]) / (volumes[i-1] + eps)
		}
		volRatio := nan
		if !math.IsNaN(volSMA20[i]) {
			volRatio = volumes[i] / (volSMA20[i] + eps)
		}

		rows[i] = []float64{
			ret1[i], ret5[i], ret10[i], ret20[i],
			logRet[i],
			vol10[i], vol20[i],
			sma10[i], sma20[i], sma50[i],
			ema10[i], ema20[i],
			rsi14[i],
			macd[i], macdSig[i],
			stochK[i], stochD[i],
			bbUpper, bbLower, bbWidth,
			atr14[i],
			(highs[i] - lows[i]) / (closes[i] + eps), gap,
			volChange, volSMA20[i], volRatio,
		}
	}

	return &Matrix{Timestamps: timestamps, Closes: closes, Rows: rows}, nil
}

// returns computes the simple n-bar return, defined from index n.
func returns(closes []float64, n int) []float64 {
	out := nanSlice(len(closes))
	for i := n; i < len(closes); i++ {
		out[i] = (closes[i] - closes[i-n]) / (closes[i-n] + eps)
	}
	return out
}

// logReturns is the one-bar log return, defined from index 1.
func logReturns(closes []float64) []float64 {
	out := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		out[i] = math.Log((closes[i] + eps) / (closes[i-1] + eps))
	}
	return out
}
