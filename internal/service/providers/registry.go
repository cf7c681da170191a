package providers

import (
	"sort"
	"sync"
	"time"

	drepo "StockPulse/internal/domain/repository"
)

// Status is a point-in-time health snapshot of one registered provider.
type Status struct {
	Name          string     `json:"name"`
	Priority      int        `json:"priority"`
	Capabilities  []string   `json:"capabilities"`
	Successes     int64      `json:"successes"`
	Failures      int64      `json:"failures"`
	LastError     string     `json:"last_error,omitempty"`
	LastErrorAt   *time.Time `json:"last_error_at,omitempty"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
}

type health struct {
	successes     int64
	failures      int64
	lastError     string
	lastErrorAt   time.Time
	lastSuccessAt time.Time
}

// Registry holds the fixed provider set sorted by ascending priority and
// tracks per-provider attempt outcomes for the status endpoint.
type Registry struct {
	providers []drepo.Provider

	mu     sync.Mutex
	health map[string]*health
}

// NewRegistry builds a registry from the given providers. Nil entries
// (e.g. a keyed provider without a key) are skipped.
func NewRegistry(provs ...drepo.Provider) *Registry {
	r := &Registry{health: make(map[string]*health)}
	for _, p := range provs {
		if p == nil {
			continue
		}
		r.providers = append(r.providers, p)
		r.health[p.Name()] = &health{}
	}
	sort.SliceStable(r.providers, func(i, j int) bool {
		return r.providers[i].Priority() < r.providers[j].Priority()
	})
	return r
}

// For returns providers supporting the capability, in priority order.
func (r *Registry) For(c drepo.Capability) []drepo.Provider {
	out := make([]drepo.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Supports(c) {
			out = append(out, p)
		}
	}
	return out
}

// RecordSuccess marks a successful attempt against the provider.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	if h, ok := r.health[name]; ok {
		h.successes++
		h.lastSuccessAt = time.Now()
	}
	r.mu.Unlock()
}

// RecordFailure marks a failed attempt and remembers the error text.
func (r *Registry) RecordFailure(name, errText string) {
	r.mu.Lock()
	if h, ok := r.health[name]; ok {
		h.failures++
		h.lastError = errText
		h.lastErrorAt = time.Now()
	}
	r.mu.Unlock()
}

// Reset clears the accumulated health counters for every provider.
func (r *Registry) Reset() {
	r.mu.Lock()
	for name := range r.health {
		r.health[name] = &health{}
	}
	r.mu.Unlock()
}

// Statuses returns health snapshots in priority order.
func (r *Registry) Statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Status, 0, len(r.providers))
	for _, p := range r.providers {
		h := r.health[p.Name()]
		st := Status{
			Name:         p.Name(),
			Priority:     p.Priority(),
			Capabilities: capabilitiesOf(p),
			Successes:    h.successes,
			Failures:     h.failures,
			LastError:    h.lastError,
		}
		if !h.lastErrorAt.IsZero() {
			t := h.lastErrorAt
			st.LastErrorAt = &t
		}
		if !h.lastSuccessAt.IsZero() {
			t := h.lastSuccessAt
			st.LastSuccessAt = &t
		}
		out = append(out, st)
	}
	return out
}

func capabilitiesOf(p drepo.Provider) []string {
	all := []drepo.Capability{drepo.CapCatalog, drepo.CapQuote, drepo.CapCandles, drepo.CapSearch}
	out := make([]string, 0, len(all))
	for _, c := range all {
		if p.Supports(c) {
			out = append(out, string(c))
		}
	}
	return out
}
