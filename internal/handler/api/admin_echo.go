package api

import (
	"context"
	"time"

	domrepo "StockPulse/internal/domain/repository"
	svccache "StockPulse/internal/service/cache"
	"StockPulse/internal/service/providers"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AdminEchoHandler exposes operational endpoints: provider health, cache
// introspection and the service health probe.
type AdminEchoHandler struct {
	logger    *xlogger.Logger
	registry  *providers.Registry
	cache     *svccache.Store
	collector *xlogger.FailureCollector
	warehouse domrepo.CandleStore // nil when ClickHouse is disabled
	startedAt time.Time
}

func NewAdminEchoHandler(
	logger *xlogger.Logger,
	registry *providers.Registry,
	cache *svccache.Store,
	collector *xlogger.FailureCollector,
	warehouse domrepo.CandleStore,
) *AdminEchoHandler {
	return &AdminEchoHandler{
		logger:    logger,
		registry:  registry,
		cache:     cache,
		collector: collector,
		warehouse: warehouse,
		startedAt: time.Now(),
	}
}

func (h *AdminEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.GET("/providers", h.Providers)
	g.POST("/providers/reset", h.ResetProviders)
	g.GET("/cache", h.CacheInfo)
	g.DELETE("/cache", h.ClearCache)
}

type providersResponse struct {
	Providers []providers.Status     `json:"providers"`
	Failures  []xlogger.FailureEntry `json:"recent_failures,omitempty"`
}

func (h *AdminEchoHandler) Providers(c echo.Context) error {
	resp := providersResponse{Providers: h.registry.Statuses()}
	if h.collector != nil {
		// ?since=<RFC3339|unix> keeps only failures seen after that point.
		since := xhttp.ParseTimeDefault(c.QueryParam("since"), time.Time{})
		limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 0)
		for _, e := range h.collector.Snapshot() {
			if since.IsZero() || e.LastSeen.After(since) {
				resp.Failures = append(resp.Failures, e)
			}
			if limit > 0 && len(resp.Failures) >= limit {
				break
			}
		}
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *AdminEchoHandler) ResetProviders(c echo.Context) error {
	h.registry.Reset()
	if h.collector != nil {
		h.collector.Reset("")
	}
	h.logger.Info("provider health counters reset")
	return xhttp.SuccessResponse(c, map[string]string{"status": "reset"})
}

type cacheInfoResponse struct {
	Entries    int                           `json:"entries"`
	Operations map[string]svccache.OpStats   `json:"operations"`
}

func (h *AdminEchoHandler) CacheInfo(c echo.Context) error {
	stats, entries := h.cache.Stats(c.Request().Context())
	return xhttp.SuccessResponse(c, cacheInfoResponse{Entries: entries, Operations: stats})
}

func (h *AdminEchoHandler) ClearCache(c echo.Context) error {
	if err := h.cache.Clear(c.Request().Context()); err != nil {
		h.logger.Error("cache clear failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("cache clear failed"))
	}
	h.logger.Info("cache cleared")
	return xhttp.SuccessResponse(c, map[string]string{"status": "cleared"})
}

type healthResponse struct {
	Status    string            `json:"status"`
	UptimeSec int64             `json:"uptime_seconds"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (h *AdminEchoHandler) Health(c echo.Context) error {
	resp := healthResponse{
		Status:    "ok",
		UptimeSec: int64(time.Since(h.startedAt).Seconds()),
		Checks:    map[string]string{},
	}
	if h.warehouse != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.warehouse.Health(ctx); err != nil {
			resp.Checks["warehouse"] = "down"
			resp.Status = "degraded"
		} else {
			resp.Checks["warehouse"] = "ok"
		}
	}
	return xhttp.SuccessResponse(c, resp)
}
