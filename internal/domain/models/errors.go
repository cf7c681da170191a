package models

import "errors"

// Data-availability failures surfaced to callers as typed errors so the
// HTTP layer can distinguish "unknown instrument" from "upstreams down"
// from "not enough history to train".
var (
	ErrNotFound            = errors.New("instrument not found")
	ErrNoData              = errors.New("no data available from any provider")
	ErrInsufficientHistory = errors.New("insufficient history for training")
	ErrUpstreamUnavailable = errors.New("upstream providers unavailable")

	// ErrMalformedSeries marks a candle series that violates ordering or
	// OHLC invariants. This is a defect, not a recoverable condition.
	ErrMalformedSeries = errors.New("malformed candle series")
)

// FailureKind classifies a single provider attempt.
type FailureKind string

const (
	FailTimeout     FailureKind = "timeout"
	FailRateLimited FailureKind = "rate_limited"
	FailNotFound    FailureKind = "not_found"
	FailMalformed   FailureKind = "malformed"
	FailEmpty       FailureKind = "empty"
	FailUpstream    FailureKind = "upstream"
)

// ProviderError is the tagged failure variant of a provider attempt.
// It lives only for the duration of a fetch walk; the coordinator logs
// it and moves on to the next provider.
type ProviderError struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + " from " + e.Provider + ": " + e.Err.Error()
	}
	return string(e.Kind) + " from " + e.Provider
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError tags err with the provider name and failure kind.
func NewProviderError(provider string, kind FailureKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}
