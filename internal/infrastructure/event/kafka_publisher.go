package event

import (
	"context"
	"fmt"

	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/repairshop/erp/internal/infrastructure/config"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PayrollEventTypes are forwarded to Kafka for downstream systems
var PayrollEventTypes = []string{
	payroll.EventTypeSalaryRecordCreated,
	payroll.EventTypeSalaryRecordUpdated,
	payroll.EventTypeSalaryRecordPaid,
	payroll.EventTypeSalaryRecordDeleted,
	payroll.EventTypePayrollGenerated,
}

// KafkaPublisher forwards domain events from the bus to a Kafka topic.
// Messages are keyed by aggregate ID so one record's events stay ordered.
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaWriter builds a kafka-go writer from config
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
		Transport:              &kafka.Transport{ClientID: cfg.ClientID},
	}
}

// NewKafkaPublisher creates a publisher writing to topic
func NewKafkaPublisher(writer MessageWriter, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
		logger: logger.Named("kafka.publisher"),
	}
}

// Handle implements shared.EventHandler
func (p *KafkaPublisher) Handle(ctx context.Context, event shared.DomainEvent) error {
	value, err := Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.AggregateID().String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
			{Key: "tenant_id", Value: []byte(event.TenantID().String())},
		},
		Time: event.OccurredAt(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.EventType(), p.topic, err)
	}

	p.logger.Debug("Event published",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
	)
	return nil
}

// EventTypes implements shared.EventHandler
func (p *KafkaPublisher) EventTypes() []string {
	return PayrollEventTypes
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ shared.EventHandler = (*KafkaPublisher)(nil)
