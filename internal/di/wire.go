//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient services
		ProvideLogger,
		ProvideMetrics,
		ProvideHTTPClient,

		// Infrastructure clients (nil when disabled in config)
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideCatalog,
		ProvideWarehouse,
		ProvidePublisher,
		ProvideFailureCollector,

		// Provider walk
		ProvideRateLimiter,
		ProvideRegistry,
		ProvideCacheBackend,
		ProvideCacheStore,
		ProvideFetcher,

		// Model and use cases
		ProvideModelService,
		ProvideInstrumentsUseCase,
		ProvideQuotesUseCase,
		ProvideCandlesUseCase,
		ProvidePredictUseCase,

		// HTTP handlers
		ProvideStocksHandler,
		ProvidePredictHandler,
		ProvideAdminHandler,
		ProvideRouter,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
