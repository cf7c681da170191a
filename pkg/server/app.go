package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "StockPulse/internal/domain/repository"
	svccache "StockPulse/internal/service/cache"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

// App encapsulates the application lifecycle: the HTTP server plus the
// shared resources that need an orderly shutdown.
type App struct {
	cfg       *config.Config
	l         *applogger.Logger
	handler   xhttp.Handler
	cache     *svccache.Store
	warehouse domrepo.CandleStore // nil when ClickHouse is disabled
	publisher domrepo.Publisher   // nil when Kafka is disabled
	collector *applogger.FailureCollector

	httpServer *xhttp.Server
}

// New creates the App.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	cache *svccache.Store,
	warehouse domrepo.CandleStore,
	publisher domrepo.Publisher,
	collector *applogger.FailureCollector,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		handler:   handler,
		cache:     cache,
		warehouse: warehouse,
		publisher: publisher,
		collector: collector,
	}
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops the server and closes shared resources in dependency
// order: HTTP first so no request races a closed backend.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.collector != nil {
		a.collector.Close()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.warehouse != nil {
		if err := a.warehouse.Close(); err != nil {
			a.l.Warn("warehouse close error", applogger.Error(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.l.Warn("cache close error", applogger.Error(err))
	}

	a.l.Info("shutdown complete")
	return nil
}
