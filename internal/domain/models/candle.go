package models

import (
	"fmt"
	"sort"
	"time"
)

// Candle represents one OHLCV observation for an instrument at a sampling
// interval. Timestamps are exchange-local with second precision.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Valid reports whether the candle satisfies the OHLC invariant
// low <= min(open, close) <= max(open, close) <= high and volume >= 0.
func (c Candle) Valid() bool {
	lo, hi := c.Open, c.Close
	if lo > hi {
		lo, hi = hi, lo
	}
	return c.Low <= lo && hi <= c.High && c.Volume >= 0
}

// NormalizeSeries sorts candles ascending by timestamp and drops duplicate
// timestamps, keeping the first occurrence. Providers call this on their
// raw payloads before validation.
func NormalizeSeries(candles []Candle) []Candle {
	if len(candles) == 0 {
		return candles
	}
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	out := candles[:1]
	for _, c := range candles[1:] {
		if c.Timestamp.Equal(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ValidateSeries checks that candles are strictly increasing by timestamp
// and every candle satisfies the OHLC invariant. A violation is a data
// defect and must surface loudly rather than feed the feature engine.
func ValidateSeries(candles []Candle) error {
	for i, c := range candles {
		if !c.Valid() {
			return fmt.Errorf("%w: candle %d at %s violates ohlc invariant (o=%g h=%g l=%g c=%g v=%g)",
				ErrMalformedSeries, i, c.Timestamp.Format(time.RFC3339), c.Open, c.High, c.Low, c.Close, c.Volume)
		}
		if i > 0 && !candles[i-1].Timestamp.Before(c.Timestamp) {
			return fmt.Errorf("%w: timestamps not strictly increasing at index %d", ErrMalformedSeries, i)
		}
	}
	return nil
}
