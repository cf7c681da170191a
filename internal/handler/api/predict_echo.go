package api

import (
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictEchoHandler exposes the train-and-predict operation.
type PredictEchoHandler struct {
	logger  *xlogger.Logger
	predict *usecase.PredictUseCase
}

func NewPredictEchoHandler(logger *xlogger.Logger, predict *usecase.PredictUseCase) *PredictEchoHandler {
	return &PredictEchoHandler{logger: logger, predict: predict}
}

func (h *PredictEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/predict/:symbol", h.Predict)
}

func (h *PredictEchoHandler) Predict(c echo.Context) error {
	symbol := c.Param("symbol")
	if symbol == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol required"))
	}

	res, err := h.predict.Predict(c.Request().Context(), symbol)
	if err != nil {
		h.logger.Error("predict usecase error", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}
