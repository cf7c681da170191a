package api

import "github.com/labstack/echo/v4"

// Router bundles every API handler behind one route registrar.
type Router struct {
	stocks  *StocksEchoHandler
	predict *PredictEchoHandler
	admin   *AdminEchoHandler
}

func NewRouter(stocks *StocksEchoHandler, predict *PredictEchoHandler, admin *AdminEchoHandler) *Router {
	return &Router{stocks: stocks, predict: predict, admin: admin}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	r.stocks.RegisterRoutes(e)
	r.predict.RegisterRoutes(e)
	r.admin.RegisterRoutes(e)
}
