package repository

import (
	"context"
	"fmt"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgkafka "StockPulse/pkg/kafka"
)

// KafkaPublisher emits fresh prediction events keyed by symbol so
// downstream consumers see per-symbol ordering.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Publisher backed by the shared producer.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) domrepo.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// PublishPrediction publishes one prediction event. Chart candles are
// stripped from the event payload; consumers fetch series themselves.
func (p *KafkaPublisher) PublishPrediction(ctx context.Context, pred *models.PredictionResult) error {
	if pred == nil {
		return fmt.Errorf("nil prediction")
	}
	event := *pred
	event.Candles = nil
	if err := p.producer.Publish(ctx, p.topic, []byte(pred.Symbol), &event); err != nil {
		return fmt.Errorf("publish prediction %s: %w", pred.Symbol, err)
	}
	return nil
}

// Close closes the underlying producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// LogPublisher adapts the producer to the failure collector's publisher
// interface for periodic failure summaries.
type LogPublisher struct {
	producer *pkgkafka.Producer
}

func NewLogPublisher(producer *pkgkafka.Producer) *LogPublisher {
	return &LogPublisher{producer: producer}
}

func (p *LogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}
