package orderreader

import (
	"context"

	"github.com/segmentio/kafka-go"

	orderreaderv1 "github.com/quantonr/exchange/internal/domain/order-reader/v1"
	"github.com/quantonr/exchange/pkg/config"
	"github.com/quantonr/exchange/pkg/logger"
)

// Reader consumes order requests from the order topic.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      *logger.Logger
}

// NewReader creates a Kafka reader for the order topic. It returns an
// implementation of the OrderReader interface.
func NewReader(cfg config.KafkaConfig, log *logger.Logger) *Reader {
	// A partition reader, not a consumer group: the engine seeks explicitly
	// to the offset recorded in the last snapshot.
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

func (r *Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "operation", Value: operation},
	)
}

// SetOffset sets the offset for the Kafka reader.
func (r *Reader) SetOffset(offset int64) error {
	if err := r.kafkaReader.SetOffset(offset); err != nil {
		r.logError(err, "SetOffset")
		return err
	}
	return nil
}

// ReadMessage reads one message from the order topic and parses it as an
// OrderRequest. The stream offset is stamped onto the request.
func (r *Reader) ReadMessage(ctx context.Context) (kafka.Message, *orderreaderv1.OrderRequest, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		r.logError(err, "ReadMessage")
		return kafka.Message{}, nil, err
	}

	request, err := orderreaderv1.FromBytes(msg.Value)
	if err != nil {
		r.logError(err, "UnmarshalOrderRequest")
		return kafka.Message{}, nil, err
	}

	r.logger.Debug("ReadMessage",
		logger.Field{Key: "action", Value: request.Action},
		logger.Field{Key: "symbol", Value: request.Symbol},
		logger.Field{Key: "side", Value: request.Side},
		logger.Field{Key: "type", Value: request.Type},
		logger.Field{Key: "size", Value: request.Size},
		logger.Field{Key: "price", Value: request.Price},
		logger.Field{Key: "clientID", Value: request.ClientID},
	)

	request.Offset = msg.Offset

	return msg, request, nil
}

// CommitMessages is a no-op for a partition reader; progress is tracked by
// the snapshot offset instead of a consumer group.
func (r *Reader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return nil
}

// Close properly closes the Kafka reader.
func (r *Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}
