package logger

import (
	"context"
	"sync"
	"time"
)

type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type CollectorConfig struct {
	FlushInterval time.Duration // periodic publish interval (e.g., 30s)
	MaxEntries    int           // max distinct failures tracked before oldest is dropped
	Topic         string        // topic for aggregated failure summaries
	Publisher     Publisher     // optional; nil disables publishing
}

// FailureEntry is one aggregated failure: identical (source, kind, message)
// occurrences are counted rather than stored individually.
type FailureEntry struct {
	Source    string    `json:"source"` // provider or component name
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// FailureCollector aggregates repeated failures (mainly provider errors)
// so the status endpoint can report them without log scraping, and
// optionally publishes periodic summaries.
type FailureCollector struct {
	cfg    *CollectorConfig
	mu     sync.Mutex
	m      map[string]*FailureEntry
	order  []string // insertion order for bounded eviction
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewFailureCollector(cfg *CollectorConfig) *FailureCollector {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 256
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &FailureCollector{
		cfg:    cfg,
		m:      make(map[string]*FailureEntry),
		ctx:    ctx,
		cancel: cancel,
	}
	if cfg.Publisher != nil && cfg.FlushInterval > 0 {
		c.wg.Add(1)
		go c.periodicFlush()
	}
	return c
}

// Record counts one failure occurrence.
func (c *FailureCollector) Record(source, kind, message string) {
	now := time.Now()
	key := source + "|" + kind + "|" + message

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.m[key]; ok {
		e.Count++
		e.LastSeen = now
		return
	}
	if len(c.order) >= c.cfg.MaxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.m, oldest)
	}
	c.m[key] = &FailureEntry{
		Source:    source,
		Kind:      kind,
		Message:   message,
		Count:     1,
		FirstSeen: now,
		LastSeen:  now,
	}
	c.order = append(c.order, key)
}

// Snapshot returns a copy of the aggregated failures.
func (c *FailureCollector) Snapshot() []FailureEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]FailureEntry, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, *c.m[key])
	}
	return out
}

// Reset clears aggregated failures for one source, or all when source is "".
func (c *FailureCollector) Reset(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if source == "" {
		c.m = make(map[string]*FailureEntry)
		c.order = c.order[:0]
		return
	}
	kept := c.order[:0]
	for _, key := range c.order {
		if c.m[key].Source == source {
			delete(c.m, key)
			continue
		}
		kept = append(kept, key)
	}
	c.order = kept
}

func (c *FailureCollector) periodicFlush() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.ctx.Done():
			c.flush()
			return
		}
	}
}

func (c *FailureCollector) flush() {
	entries := c.Snapshot()
	if len(entries) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// best effort: summaries are diagnostics, not data
	_ = c.cfg.Publisher.PublishMessage(ctx, c.cfg.Topic, entries)
}

func (c *FailureCollector) Close() {
	c.cancel()
	c.wg.Wait()
}
