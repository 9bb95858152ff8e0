package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/domain/payroll"
	"github.com/repairshop/erp/internal/infrastructure/config"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Handle(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	event := payroll.NewPayrollGeneratedEvent(tenantID, payroll.Period{Month: "March", Year: 2024}, 12, 3, 1, userID)

	t.Run("writes an envelope keyed by aggregate", func(t *testing.T) {
		writer := &fakeWriter{}
		publisher := NewKafkaPublisher(writer, "erp.payroll.events", zap.NewNop())

		require.NoError(t, publisher.Handle(context.Background(), event))
		require.Len(t, writer.messages, 1)

		msg := writer.messages[0]
		assert.Equal(t, "erp.payroll.events", msg.Topic)
		assert.Equal(t, tenantID.String(), string(msg.Key))
		assert.Equal(t, []kafka.Header{
			{Key: "event_type", Value: []byte(payroll.EventTypePayrollGenerated)},
			{Key: "tenant_id", Value: []byte(tenantID.String())},
		}, msg.Headers)

		env, err := Unmarshal(msg.Value)
		require.NoError(t, err)
		assert.Equal(t, event.EventID(), env.EventID)
		assert.Equal(t, payroll.EventTypePayrollGenerated, env.EventType)
		assert.Equal(t, "PayrollRun", env.AggregateType)
		assert.Equal(t, tenantID, env.TenantID)

		var payload payroll.PayrollGeneratedEvent
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		assert.Equal(t, "March", payload.Month)
		assert.Equal(t, 2024, payload.Year)
		assert.Equal(t, 12, payload.Count)
		assert.Equal(t, 3, payload.Skipped)
		assert.Equal(t, 1, payload.Failed)
		assert.Equal(t, userID, payload.GeneratedBy)
	})

	t.Run("writer errors are wrapped", func(t *testing.T) {
		writer := &fakeWriter{err: errors.New("leader not available")}
		publisher := NewKafkaPublisher(writer, "erp.payroll.events", zap.NewNop())

		err := publisher.Handle(context.Background(), event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to publish PayrollGenerated to erp.payroll.events")
		assert.ErrorContains(t, err, "leader not available")
	})

	t.Run("close closes the writer", func(t *testing.T) {
		writer := &fakeWriter{}
		require.NoError(t, NewKafkaPublisher(writer, "t", zap.NewNop()).Close())
		assert.True(t, writer.closed)
	})
}

func TestKafkaPublisher_SubscribedThroughBus(t *testing.T) {
	writer := &fakeWriter{}
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewKafkaPublisher(writer, "erp.payroll.events", zap.NewNop()))

	require.NoError(t, bus.Publish(context.Background(),
		payroll.NewPayrollGeneratedEvent(uuid.New(), payroll.Period{Month: "April", Year: 2024}, 1, 0, 0, uuid.New()),
		newTestEvent("SomethingElse"),
	))
	assert.Len(t, writer.messages, 1)
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter(config.KafkaConfig{
		Brokers:      []string{"kafka-1:9092", "kafka-2:9092"},
		ClientID:     "erp-backend",
		WriteTimeout: 5 * time.Second,
	})
	defer w.Close()

	assert.Equal(t, "kafka-1:9092,kafka-2:9092", w.Addr.String())
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Equal(t, 5*time.Second, w.WriteTimeout)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := Unmarshal([]byte("{not json"))
	assert.ErrorContains(t, err, "failed to unmarshal event envelope")

	_, err = Unmarshal([]byte(`{"event_id":"` + uuid.NewString() + `"}`))
	assert.ErrorContains(t, err, "no event_type")
}
