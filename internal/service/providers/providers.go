// Package providers implements the upstream data sources behind the fetch
// coordinator. Each provider normalizes its native payload into the
// canonical Candle/Quote/Instrument shapes and tags failures with a
// FailureKind so the coordinator can classify the attempt.
package providers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"
)

// classifyHTTPError maps transport-level failures onto the failure
// taxonomy: deadline/timeout, 429, 404, everything else upstream.
func classifyHTTPError(provider string, err error) *models.ProviderError {
	var serr *xhttp.StatusError
	if errors.As(err, &serr) {
		switch {
		case serr.Code == http.StatusTooManyRequests:
			return models.NewProviderError(provider, models.FailRateLimited, err)
		case serr.Code == http.StatusNotFound:
			return models.NewProviderError(provider, models.FailNotFound, err)
		}
		return models.NewProviderError(provider, models.FailUpstream, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewProviderError(provider, models.FailTimeout, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return models.NewProviderError(provider, models.FailTimeout, err)
	}
	return models.NewProviderError(provider, models.FailUpstream, err)
}
