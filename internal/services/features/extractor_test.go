package features

import (
	"math"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

// syntheticSeries builds n daily candles with a gentle oscillating trend
// so every indicator sees non-degenerate variation.
func syntheticSeries(n int) []models.Candle {
	out := make([]models.Candle, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < n; i++ {
		move := 0.5*math.Sin(float64(i)/5.0) + 0.1
		open := price
		price += move
		high := math.Max(open, price) + 0.3
		low := math.Min(open, price) - 0.3
		out[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			Volume:    1000 + 50*math.Sin(float64(i)/3.0),
		}
	}
	return out
}

func TestExtractColumnCount(t *testing.T) {
	m, err := Extract(syntheticSeries(120))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(Columns) != 26 {
		t.Fatalf("expected 26 columns, got %d", len(Columns))
	}
	for i, row := range m.Rows {
		if len(row) != len(Columns) {
			t.Fatalf("row %d has %d cells, want %d", i, len(row), len(Columns))
		}
	}
}

func TestExtractLookbackRowsUndefined(t *testing.T) {
	m, err := Extract(syntheticSeries(120))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	// SMA50 has the longest lookback, so the first fully-defined row is 49.
	if got := m.FirstDefined(); got != 49 {
		t.Fatalf("first defined row: got %d, want 49", got)
	}
	if m.Defined(48) {
		t.Fatalf("row 48 should still be undefined")
	}
	if got := m.LastDefined(); got != 119 {
		t.Fatalf("last defined row: got %d, want 119", got)
	}
}

func TestRSIBounds(t *testing.T) {
	m, err := Extract(syntheticSeries(120))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	col := columnIndex(t, "RSI14")
	for i := 14; i < len(m.Rows); i++ {
		v := m.Rows[i][col]
		if math.IsNaN(v) {
			t.Fatalf("RSI14 undefined at row %d", i)
		}
		if v < 0 || v > 100 {
			t.Fatalf("RSI14 out of bounds at row %d: %v", i, v)
		}
	}
}

func TestStochasticBounds(t *testing.T) {
	m, err := Extract(syntheticSeries(120))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	kCol := columnIndex(t, "StochK")
	for i := 13; i < len(m.Rows); i++ {
		v := m.Rows[i][kCol]
		if v < -1e-6 || v > 100+1e-6 {
			t.Fatalf("StochK out of bounds at row %d: %v", i, v)
		}
	}
}

func TestBollingerOrdering(t *testing.T) {
	m, err := Extract(syntheticSeries(120))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	upCol := columnIndex(t, "BBUpper")
	loCol := columnIndex(t, "BBLower")
	smaCol := columnIndex(t, "SMA20")
	for i := 19; i < len(m.Rows); i++ {
		up, lo, mid := m.Rows[i][upCol], m.Rows[i][loCol], m.Rows[i][smaCol]
		if !(lo <= mid && mid <= up) {
			t.Fatalf("band ordering violated at row %d: lo=%v mid=%v up=%v", i, lo, mid, up)
		}
	}
}

func TestExtractFlatSeriesNoNaNExplosion(t *testing.T) {
	// Constant prices and zero volume exercise the epsilon guards.
	n := 80
	candles := make([]models.Candle, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		candles[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      50, High: 50, Low: 50, Close: 50, Volume: 0,
		}
	}
	m, err := Extract(candles)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	first := m.FirstDefined()
	if first < 0 {
		t.Fatalf("flat series should still produce defined rows")
	}
	for i := first; i < n; i++ {
		for j, v := range m.Rows[i] {
			if math.IsInf(v, 0) {
				t.Fatalf("infinite value at row %d column %s", i, Columns[j])
			}
		}
	}
}

func TestVolatilityUsesSimpleReturns(t *testing.T) {
	candles := syntheticSeries(120)
	m, err := Extract(candles)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	retCol := columnIndex(t, "Return1")
	volCol := columnIndex(t, "Volatility10")
	// Recompute the sample std of the trailing 10 simple returns at an
	// arbitrary defined row; the column must match to within rounding.
	row := 60
	var sum float64
	for i := row - 9; i <= row; i++ {
		sum += m.Rows[i][retCol]
	}
	mean := sum / 10
	var ss float64
	for i := row - 9; i <= row; i++ {
		d := m.Rows[i][retCol] - mean
		ss += d * d
	}
	want := math.Sqrt(ss / 9)
	got := m.Rows[row][volCol]
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("Volatility10 at row %d: got %v, want std of simple returns %v", row, got, want)
	}
}

func TestATRIsRollingMeanOfTrueRange(t *testing.T) {
	candles := syntheticSeries(60)
	m, err := Extract(candles)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	atrCol := columnIndex(t, "ATR14")
	if math.IsNaN(m.Rows[13][atrCol]) {
		t.Fatalf("ATR14 should be defined from row 13")
	}
	if !math.IsNaN(m.Rows[12][atrCol]) {
		t.Fatalf("ATR14 should be undefined at row 12")
	}
	row := 40
	var sum float64
	for i := row - 13; i <= row; i++ {
		tr := candles[i].High - candles[i].Low
		if i > 0 {
			hc := math.Abs(candles[i].High - candles[i-1].Close)
			lc := math.Abs(candles[i].Low - candles[i-1].Close)
			tr = math.Max(tr, math.Max(hc, lc))
		}
		sum += tr
	}
	want := sum / 14
	if got := m.Rows[row][atrCol]; math.Abs(got-want) > 1e-12 {
		t.Fatalf("ATR14 at row %d: got %v, want rolling mean %v", row, got, want)
	}
}

func TestExtractRejectsMalformedSeries(t *testing.T) {
	candles := syntheticSeries(60)
	candles[30].Low = candles[30].High + 1
	if _, err := Extract(candles); err == nil {
		t.Fatalf("expected malformed series error")
	}

	candles = syntheticSeries(60)
	candles[10].Timestamp = candles[9].Timestamp
	if _, err := Extract(candles); err == nil {
		t.Fatalf("expected ordering error")
	}
}

func columnIndex(t *testing.T, name string) int {
	t.Helper()
	for i, c := range Columns {
		if c == name {
			return i
		}
	}
	t.Fatalf("unknown column %s", name)
	return -1
}
