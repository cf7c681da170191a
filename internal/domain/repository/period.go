package repository

import "time"

// Period is the requested span of candle history.
type Period string

// Interval is the candle sampling interval.
type Interval string

const (
	Period1D  Period = "1d"
	Period5D  Period = "5d"
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
	PeriodMax Period = "max"
)

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval60m Interval = "60m"
	Interval1D  Interval = "1d"
	Interval1Wk Interval = "1wk"
	Interval1Mo Interval = "1mo"
)

// periodLookback maps a period to its approximate wall-clock span.
// PeriodMax is open-ended and handled separately.
var periodLookback = map[Period]time.Duration{
	Period1D:  24 * time.Hour,
	Period5D:  5 * 24 * time.Hour,
	Period1Mo: 31 * 24 * time.Hour,
	Period3Mo: 92 * 24 * time.Hour,
	Period6Mo: 183 * 24 * time.Hour,
	Period1Y:  365 * 24 * time.Hour,
	Period2Y:  2 * 365 * 24 * time.Hour,
	Period5Y:  5 * 365 * 24 * time.Hour,
}

// IsValidPeriod reports whether p is one of the fixed supported periods.
func IsValidPeriod(p Period) bool {
	if p == PeriodMax {
		return true
	}
	_, ok := periodLookback[p]
	return ok
}

// IsIntraday reports whether the interval is finer than one day. Intraday
// series are cached on a much shorter TTL than daily ones.
func IsIntraday(iv Interval) bool {
	switch iv {
	case Interval1m, Interval5m, Interval15m, Interval30m, Interval60m:
		return true
	default:
		return false
	}
}

// IsValidInterval reports whether iv is a supported interval.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case Interval1m, Interval5m, Interval15m, Interval30m, Interval60m,
		Interval1D, Interval1Wk, Interval1Mo:
		return true
	default:
		return false
	}
}

// IntervalMatchesPeriod enforces the fixed period/interval pairing:
// intraday intervals are only served for short periods (upstreams cap
// minute-resolution history), daily and coarser intervals for any period.
func IntervalMatchesPeriod(p Period, iv Interval) bool {
	if !IsValidPeriod(p) || !IsValidInterval(iv) {
		return false
	}
	if IsIntraday(iv) {
		switch p {
		case Period1D, Period5D, Period1Mo:
			return true
		default:
			return false
		}
	}
	return true
}

// PeriodStart returns the inclusive start of the period ending at now.
// For PeriodMax it returns the zero time.
func PeriodStart(p Period, now time.Time) time.Time {
	if p == PeriodMax {
		return time.Time{}
	}
	d, ok := periodLookback[p]
	if !ok {
		return time.Time{}
	}
	return now.Add(-d)
}

// DefaultPeriod and DefaultInterval mirror the chart defaults.
func DefaultPeriod() Period     { return Period6Mo }
func DefaultInterval() Interval { return Interval1D }

// IntervalDuration returns the nominal bucket width of an interval.
// Weekly and monthly buckets are approximate.
func IntervalDuration(iv Interval) time.Duration {
	switch iv {
	case Interval1m:
		return time.Minute
	case Interval5m:
		return 5 * time.Minute
	case Interval15m:
		return 15 * time.Minute
	case Interval30m:
		return 30 * time.Minute
	case Interval60m:
		return time.Hour
	case Interval1Wk:
		return 7 * 24 * time.Hour
	case Interval1Mo:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}
