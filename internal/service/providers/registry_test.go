package providers

import (
	"context"
	"testing"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
)

type fakeProvider struct {
	name     string
	priority int
	caps     map[drepo.Capability]bool
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Priority() int { return f.priority }
func (f *fakeProvider) Supports(c drepo.Capability) bool {
	return f.caps[c]
}
func (f *fakeProvider) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return nil, nil
}
func (f *fakeProvider) Candles(ctx context.Context, symbol string, p drepo.Period, iv drepo.Interval) ([]models.Candle, error) {
	return nil, nil
}
func (f *fakeProvider) Search(ctx context.Context, q string, limit int) ([]models.Instrument, error) {
	return nil, nil
}

func TestRegistryPriorityOrder(t *testing.T) {
	r := NewRegistry(
		&fakeProvider{name: "c", priority: 20, caps: map[drepo.Capability]bool{drepo.CapCandles: true}},
		&fakeProvider{name: "a", priority: 1, caps: map[drepo.Capability]bool{drepo.CapCandles: true}},
		nil,
		&fakeProvider{name: "b", priority: 5, caps: map[drepo.Capability]bool{drepo.CapCandles: true}},
	)

	got := r.For(drepo.CapCandles)
	if len(got) != 3 {
		t.Fatalf("expected 3 providers, got %d", len(got))
	}
	want := []string{"a", "b", "c"}
	for i, p := range got {
		if p.Name() != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], p.Name())
		}
	}
}

func TestRegistryCapabilityFilter(t *testing.T) {
	r := NewRegistry(
		&fakeProvider{name: "quotes", priority: 5, caps: map[drepo.Capability]bool{drepo.CapQuote: true}},
		&fakeProvider{name: "candles", priority: 10, caps: map[drepo.Capability]bool{drepo.CapCandles: true}},
	)

	got := r.For(drepo.CapSearch)
	if len(got) != 0 {
		t.Fatalf("expected no search providers, got %d", len(got))
	}
	got = r.For(drepo.CapQuote)
	if len(got) != 1 || got[0].Name() != "quotes" {
		t.Fatalf("unexpected quote providers: %v", got)
	}
}

func TestRegistryHealthTracking(t *testing.T) {
	r := NewRegistry(&fakeProvider{name: "p1", priority: 1, caps: map[drepo.Capability]bool{drepo.CapQuote: true}})

	r.RecordSuccess("p1")
	r.RecordFailure("p1", "timeout from p1")
	r.RecordFailure("p1", "upstream from p1")

	st := r.Statuses()
	if len(st) != 1 {
		t.Fatalf("expected 1 status, got %d", len(st))
	}
	if st[0].Successes != 1 || st[0].Failures != 2 {
		t.Fatalf("unexpected counters: %+v", st[0])
	}
	if st[0].LastError != "upstream from p1" {
		t.Fatalf("unexpected last error %q", st[0].LastError)
	}
	if st[0].LastErrorAt == nil || st[0].LastSuccessAt == nil {
		t.Fatalf("expected timestamps to be set")
	}

	r.Reset()
	st = r.Statuses()
	if st[0].Successes != 0 || st[0].Failures != 0 || st[0].LastError != "" {
		t.Fatalf("expected counters cleared, got %+v", st[0])
	}
}
