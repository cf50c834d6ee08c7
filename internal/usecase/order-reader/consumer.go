package orderreader

import (
	"context"
	"encoding/json"

	orderreaderv1 "github.com/muhammadchandra19/matchcore/internal/domain/order-reader/v1"
	"github.com/muhammadchandra19/matchcore/pkg/config"
	"github.com/muhammadchandra19/matchcore/pkg/errors"
	"github.com/muhammadchandra19/matchcore/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Reader represents a Kafka reader consuming order requests from the order topic.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      *logger.Logger
}

// NewReader creates a new Kafka reader for the order topic.
// It returns an implementation of the OrderReader interface.
func NewReader(cfg config.KafkaConfig, log *logger.Logger) *Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.OrderTopic,
		Partition:   0,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return &Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

// ReadRequest reads a message from the order topic and parses it as an OrderRequest.
func (r *Reader) ReadRequest(ctx context.Context) (*orderreaderv1.OrderRequest, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		return nil, errors.NewTracer(string(errors.OrderReadError)).Wrap(err)
	}

	var request orderreaderv1.OrderRequest
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		r.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "offset",
			Value: msg.Offset,
		})
		return nil, errors.NewTracer(string(errors.OrderReadError)).Wrap(err)
	}

	request.Offset = msg.Offset

	r.logger.Debug("ReadRequest",
		logger.Field{Key: "type", Value: request.Type},
		logger.Field{Key: "side", Value: request.Side},
		logger.Field{Key: "price", Value: request.Price},
		logger.Field{Key: "quantity", Value: request.Quantity},
		logger.Field{Key: "offset", Value: msg.Offset},
	)

	return &request, nil
}

// Close properly closes the Kafka reader.
func (r *Reader) Close() error {
	return r.kafkaReader.Close()
}
