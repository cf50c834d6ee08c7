package tradepublisher

import (
	"context"

	tradepublisherv1 "github.com/muhammadchandra19/matchcore/internal/domain/trade-publisher/v1"
	"github.com/muhammadchandra19/matchcore/pkg/config"
	"github.com/muhammadchandra19/matchcore/pkg/errors"
	"github.com/muhammadchandra19/matchcore/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Publisher represents a Kafka publisher for executed trade events.
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      *logger.Logger
}

// NewPublisher creates a new Kafka publisher for the trade topic.
func NewPublisher(cfg config.KafkaConfig, log *logger.Logger) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.TradeTopic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// PublishTradeEvent publishes a trade event to the trade topic.
func (p *Publisher) PublishTradeEvent(ctx context.Context, event *tradepublisherv1.TradeEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.Pair),
		Value: event.ToBytes(),
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "pair", Value: event.Pair},
			logger.Field{Key: "tradeSequence", Value: event.Sequence},
		)
		return errors.NewTracer(string(errors.TradePublishError)).Wrap(err)
	}
	return nil
}

// Close properly closes the Kafka writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
