package api

import (
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StocksEchoHandler exposes instrument search, details and candle
// history.
type StocksEchoHandler struct {
	logger      *xlogger.Logger
	instruments *usecase.InstrumentsUseCase
	quotes      *usecase.QuotesUseCase
	candles     *usecase.CandlesUseCase
}

func NewStocksEchoHandler(
	logger *xlogger.Logger,
	instruments *usecase.InstrumentsUseCase,
	quotes *usecase.QuotesUseCase,
	candles *usecase.CandlesUseCase,
) *StocksEchoHandler {
	return &StocksEchoHandler{logger: logger, instruments: instruments, quotes: quotes, candles: candles}
}

func (h *StocksEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/stocks")
	g.GET("/search", h.Search)
	g.GET("/:symbol", h.Details)
	g.GET("/:symbol/candles", h.Candles)
}

type searchRequest struct {
	Query string `query:"q" validate:"required,min=1,max=64"`
	Limit int    `query:"limit" default:"10" validate:"min=1,max=50"`
}

func (h *StocksEchoHandler) Search(c echo.Context) error {
	req := &searchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.instruments.Search(c.Request().Context(), req.Query, req.Limit)
	if err != nil {
		h.logger.Error("search usecase error", xlogger.String("query", req.Query), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *StocksEchoHandler) Details(c echo.Context) error {
	symbol := c.Param("symbol")
	if symbol == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol required"))
	}

	res, err := h.quotes.GetDetails(c.Request().Context(), symbol)
	if err != nil {
		h.logger.Error("details usecase error", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

type candlesRequest struct {
	Period   string `query:"period" default:"6mo"`
	Interval string `query:"interval" default:"1d"`
}

func (h *StocksEchoHandler) Candles(c echo.Context) error {
	symbol := c.Param("symbol")
	if symbol == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol required"))
	}
	req := &candlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.candles.GetCandles(c.Request().Context(), symbol,
		domrepo.Period(req.Period), domrepo.Interval(req.Interval))
	if err != nil {
		h.logger.Error("candles usecase error",
			xlogger.String("symbol", symbol),
			xlogger.String("period", req.Period),
			xlogger.String("interval", req.Interval),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}
