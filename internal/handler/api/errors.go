package api

import (
	"errors"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
)

// mapDomainError translates the typed domain failures onto the HTTP
// error surface. Raw provider errors never leak into responses; the
// usecase layer has already logged the details.
func mapDomainError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidRange):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, models.ErrNotFound):
		return xhttp.NotFoundError("instrument not found")
	case errors.Is(err, models.ErrInsufficientHistory):
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_HISTORY", "not enough history to train a model for this symbol")
	case errors.Is(err, models.ErrNoData):
		return xhttp.UnavailableError("ERR_NO_DATA", "no data available from any provider")
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return xhttp.UnavailableError("ERR_UPSTREAM", "upstream providers unavailable")
	case errors.Is(err, models.ErrMalformedSeries):
		return xhttp.UnavailableError("ERR_NO_DATA", "upstream returned a malformed series")
	default:
		return xhttp.InternalError("internal error")
	}
}
