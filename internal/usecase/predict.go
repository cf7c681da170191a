package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	svccache "StockPulse/internal/service/cache"
	"StockPulse/internal/services/model"
	pkgcache "StockPulse/pkg/cache"
	applogger "StockPulse/pkg/logger"
)

// PredictUseCase runs the full cycle behind one cache entry: fetch the
// training history, train and validate, classify the latest row, attach
// the trailing chart series and publish the event. The prediction TTL
// bounds how often a symbol retrains.
type PredictUseCase struct {
	candles   *CandlesUseCase
	model     *model.Service
	cache     *svccache.Store
	publisher domrepo.Publisher
	metrics   domrepo.Metrics
	l         *applogger.Logger

	historyPeriod domrepo.Period
	chartCount    int
	ttl           time.Duration
}

func NewPredictUseCase(
	candles *CandlesUseCase,
	modelSvc *model.Service,
	cache *svccache.Store,
	publisher domrepo.Publisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	historyPeriod domrepo.Period,
	chartCount int,
	ttl time.Duration,
) *PredictUseCase {
	if chartCount <= 0 {
		chartCount = 100
	}
	return &PredictUseCase{
		candles:       candles,
		model:         modelSvc,
		cache:         cache,
		publisher:     publisher,
		metrics:       metrics,
		l:             l,
		historyPeriod: historyPeriod,
		chartCount:    chartCount,
		ttl:           ttl,
	}
}

// Predict returns the cached prediction for symbol or computes a fresh
// one.
func (uc *PredictUseCase) Predict(ctx context.Context, symbol string) (*models.PredictionResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}

	key := pkgcache.Key("predict", symbol)
	return svccache.GetOrCompute(ctx, uc.cache, "predict", key, uc.ttl,
		func(ctx context.Context) (*models.PredictionResult, error) {
			return uc.compute(ctx, symbol)
		})
}

func (uc *PredictUseCase) compute(ctx context.Context, symbol string) (*models.PredictionResult, error) {
	history, err := uc.candles.GetCandles(ctx, symbol, uc.historyPeriod, domrepo.Interval1D)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := uc.model.Predict(ctx, symbol, history.Candles)
	if err != nil {
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.RecordTrainingDuration(time.Since(start).Seconds())
		uc.metrics.RecordPrediction(result.Direction)
	}

	// Trailing chart series for the response.
	candles := history.Candles
	if len(candles) > uc.chartCount {
		candles = candles[len(candles)-uc.chartCount:]
	}
	result.Candles = candles

	uc.publish(result)
	return result, nil
}

// publish emits the prediction event without blocking the response.
func (uc *PredictUseCase) publish(result *models.PredictionResult) {
	if uc.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := uc.publisher.PublishPrediction(ctx, result); err != nil && uc.l != nil {
			uc.l.Warn("prediction publish failed",
				applogger.String("symbol", result.Symbol),
				applogger.Error(err),
			)
		}
	}()
}
