package repository

import (
	"testing"
	"time"
)

func TestIsValidPeriod(t *testing.T) {
	for _, p := range []Period{Period1D, Period5D, Period1Mo, Period3Mo, Period6Mo, Period1Y, Period2Y, Period5Y, PeriodMax} {
		if !IsValidPeriod(p) {
			t.Fatalf("expected %s valid", p)
		}
	}
	if IsValidPeriod("7mo") {
		t.Fatalf("7mo should be invalid")
	}
}

func TestIntervalMatchesPeriod(t *testing.T) {
	if !IntervalMatchesPeriod(Period1D, Interval5m) {
		t.Fatalf("1d/5m should match")
	}
	if !IntervalMatchesPeriod(Period1Mo, Interval1D) {
		t.Fatalf("1mo/1d should match")
	}
	if IntervalMatchesPeriod(Period2Y, Interval1m) {
		t.Fatalf("2y/1m should not match: upstreams cap intraday history")
	}
	if IntervalMatchesPeriod(Period1Y, "2h") {
		t.Fatalf("unknown interval should not match")
	}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got := PeriodStart(Period5D, now)
	if want := now.Add(-5 * 24 * time.Hour); !got.Equal(want) {
		t.Fatalf("unexpected start %v", got)
	}
	if !PeriodStart(PeriodMax, now).IsZero() {
		t.Fatalf("max period should have zero start")
	}
}
