package di

import (
	"context"
	"fmt"
	"time"

	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/handler/api"
	internalrepo "StockPulse/internal/repository"
	svccache "StockPulse/internal/service/cache"
	"StockPulse/internal/service/providers"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/services/model"
	"StockPulse/internal/usecase"
	pkgcache "StockPulse/pkg/cache"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	pkgmetrics "StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return pkgmetrics.New()
}

// ProvideHTTPClient creates the shared outbound HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Providers.Timeout))
}

// ProvideCatalog loads the local instrument catalog.
func ProvideCatalog(cfg *config.Config) (*internalrepo.Catalog, error) {
	catalog, err := internalrepo.NewCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return catalog, nil
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// warehouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Health(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse health: %w", err)
	}
	return client, nil
}

// ProvideWarehouse creates the candle warehouse on top of ClickHouse.
// Returns a nil CandleStore when ClickHouse is disabled; downstream
// consumers treat nil as "no warehouse".
func ProvideWarehouse(ch *pkgch.Client, l *applogger.Logger) (domrepo.CandleStore, error) {
	if ch == nil {
		return nil, nil
	}
	wh, err := internalrepo.NewCandleWarehouse(ch, l)
	if err != nil {
		return nil, fmt.Errorf("candle warehouse: %w", err)
	}
	return wh, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the prediction event publisher, or nil when
// Kafka is disabled.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.PredictionsTopic)
}

// ProvideFailureCollector aggregates provider failures and, when Kafka is
// up, publishes periodic summaries to the logs topic.
func ProvideFailureCollector(producer *pkgkafka.Producer, cfg *config.Config) *applogger.FailureCollector {
	var pub applogger.Publisher
	if producer != nil && cfg.Kafka.LogsTopic != "" {
		pub = internalrepo.NewLogPublisher(producer)
	}
	return applogger.NewFailureCollector(&applogger.CollectorConfig{
		FlushInterval: 30 * time.Second,
		Topic:         cfg.Kafka.LogsTopic,
		Publisher:     pub,
	})
}

// ProvideRateLimiter creates the per-provider token bucket limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideRegistry assembles the provider registry from configuration.
// Providers without required credentials are simply not registered.
func ProvideRegistry(
	cfg *config.Config,
	client *xhttp.Client,
	catalog *internalrepo.Catalog,
	warehouse domrepo.CandleStore,
) *providers.Registry {
	provs := make([]domrepo.Provider, 0, 6)
	provs = append(provs, catalog)
	if p, ok := warehouse.(domrepo.Provider); ok {
		provs = append(provs, p)
	}
	if cfg.Providers.Yahoo.Enabled {
		provs = append(provs, providers.NewYahoo(client,
			cfg.Providers.Yahoo.ChartURL,
			cfg.Providers.Yahoo.QuoteURL,
			cfg.Providers.Yahoo.SearchURL,
		))
	}
	if cfg.Providers.Stooq.Enabled {
		provs = append(provs, providers.NewStooq(client, cfg.Providers.Stooq.BaseURL))
	}
	if cfg.Providers.AlphaVantage.APIKey != "" {
		provs = append(provs, providers.NewAlphaVantage(client,
			cfg.Providers.AlphaVantage.BaseURL,
			cfg.Providers.AlphaVantage.APIKey,
		))
	}
	if cfg.Providers.Finnhub.APIKey != "" {
		provs = append(provs, providers.NewFinnhub(client,
			cfg.Providers.Finnhub.BaseURL,
			cfg.Providers.Finnhub.APIKey,
		))
	}
	return providers.NewRegistry(provs...)
}

// ProvideCacheBackend creates the cache backend: in-memory by default,
// layered memory-over-Redis when Redis is enabled.
func ProvideCacheBackend(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	}
	redisCache, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(redisCache,
		pkgcache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
	), nil
}

// ProvideCacheStore wraps the backend with single-flight de-duplication
// and hit/miss accounting.
func ProvideCacheStore(backend pkgcache.Service, m domrepo.Metrics) *svccache.Store {
	store := svccache.NewStore(backend)
	store.SetMetrics(m)
	return store
}

// ProvideFetcher creates the provider walk coordinator.
func ProvideFetcher(
	registry *providers.Registry,
	limiter *ratelimit.Limiter,
	warehouse domrepo.CandleStore,
	m domrepo.Metrics,
	collector *applogger.FailureCollector,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Fetcher {
	return usecase.NewFetcher(registry, limiter, warehouse, m, collector, l, usecase.FetcherOptions{
		Timeout:            cfg.Providers.Timeout,
		RateLimitCapacity:  cfg.Providers.RateLimit.Capacity,
		RateLimitRefillSec: cfg.Providers.RateLimit.RefillPerSec,
	})
}

// ProvideModelService creates the prediction model service.
func ProvideModelService(cfg *config.Config, l *applogger.Logger) *model.Service {
	params := model.DefaultGBDTParams()
	params.Rounds = cfg.Model.Iterations
	params.MaxDepth = cfg.Model.MaxDepth
	params.LearningRate = cfg.Model.LearningRate
	return model.NewService(model.Config{
		MinCandles:      cfg.Model.MinCandles,
		MinUniverseRows: cfg.Model.MinUniverseRows,
		Params:          params,
	}, l)
}

// ProvideInstrumentsUseCase creates the symbol search/lookup use case.
func ProvideInstrumentsUseCase(f *usecase.Fetcher, catalog *internalrepo.Catalog, store *svccache.Store, cfg *config.Config) *usecase.InstrumentsUseCase {
	return usecase.NewInstrumentsUseCase(f, catalog, store, cfg.Cache.TTL.Catalog)
}

// ProvideQuotesUseCase creates the instrument details use case.
func ProvideQuotesUseCase(f *usecase.Fetcher, catalog *internalrepo.Catalog, store *svccache.Store, m domrepo.Metrics, cfg *config.Config) *usecase.QuotesUseCase {
	return usecase.NewQuotesUseCase(f, catalog, store, m, cfg.Cache.TTL.Quote)
}

// ProvideCandlesUseCase creates the candle history use case.
func ProvideCandlesUseCase(f *usecase.Fetcher, store *svccache.Store, cfg *config.Config) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(f, store, cfg.Cache.TTL.CandlesDaily, cfg.Cache.TTL.CandlesIntraday)
}

// ProvidePredictUseCase creates the prediction use case.
func ProvidePredictUseCase(
	candles *usecase.CandlesUseCase,
	modelSvc *model.Service,
	store *svccache.Store,
	publisher domrepo.Publisher,
	m domrepo.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.PredictUseCase {
	return usecase.NewPredictUseCase(
		candles,
		modelSvc,
		store,
		publisher,
		m,
		l,
		domrepo.Period(cfg.Model.HistoryPeriod),
		cfg.Model.ChartCandleCount,
		cfg.Cache.TTL.Prediction,
	)
}

// ProvideStocksHandler creates the stocks HTTP handler.
func ProvideStocksHandler(l *applogger.Logger, instruments *usecase.InstrumentsUseCase, quotes *usecase.QuotesUseCase, candles *usecase.CandlesUseCase) *api.StocksEchoHandler {
	return api.NewStocksEchoHandler(l, instruments, quotes, candles)
}

// ProvidePredictHandler creates the prediction HTTP handler.
func ProvidePredictHandler(l *applogger.Logger, predict *usecase.PredictUseCase) *api.PredictEchoHandler {
	return api.NewPredictEchoHandler(l, predict)
}

// ProvideAdminHandler creates the health/admin HTTP handler.
func ProvideAdminHandler(l *applogger.Logger, registry *providers.Registry, store *svccache.Store, collector *applogger.FailureCollector, warehouse domrepo.CandleStore) *api.AdminEchoHandler {
	return api.NewAdminEchoHandler(l, registry, store, collector, warehouse)
}

// ProvideRouter bundles the handlers into a single route registrar.
func ProvideRouter(stocks *api.StocksEchoHandler, predict *api.PredictEchoHandler, admin *api.AdminEchoHandler) xhttp.Handler {
	return api.NewRouter(stocks, predict, admin)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	store *svccache.Store,
	warehouse domrepo.CandleStore,
	publisher domrepo.Publisher,
	collector *applogger.FailureCollector,
) *server.App {
	return server.New(cfg, l, handler, store, warehouse, publisher, collector)
}
