package executionpublisher

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/segmentio/kafka-go"

	executionpublisherv1 "github.com/quantonr/exchange/internal/domain/execution-publisher/v1"
	"github.com/quantonr/exchange/pkg/config"
	"github.com/quantonr/exchange/pkg/errors"
	"github.com/quantonr/exchange/pkg/logger"
)

// Publisher publishes execution reports to the execution topic.
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      *logger.Logger
}

// NewPublisher creates a Kafka publisher for execution reports.
func NewPublisher(cfg config.KafkaConfig, log *logger.Logger) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.ExecutionTopic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// PublishExecutionReport publishes one execution report. Each message is
// keyed by a freshly generated ulid, so publishing the same report twice
// produces two different keys.
func (p *Publisher) PublishExecutionReport(ctx context.Context, report *executionpublisherv1.ExecutionReport) error {
	msg := kafka.Message{
		Key:   []byte(ulid.Make().String()),
		Value: executionpublisherv1.ToBytes(report),
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(err,
			logger.Field{Key: "executionID", Value: report.ExecutionID},
			logger.Field{Key: "symbol", Value: report.Symbol},
		)
		return errors.NewTracer("failed to publish execution report").Wrap(err)
	}
	return nil
}

// Close flushes and closes the Kafka writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
