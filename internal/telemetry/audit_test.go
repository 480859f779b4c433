package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *publisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestAuditEmitterPublishesEnvelope(t *testing.T) {
	publisher := new(publisherMock)
	emitter := NewAuditEmitter(publisher, "audit.messaging", "messaging-service", "test")

	publisher.On("Publish", mock.Anything, "audit.messaging", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(AuditEnvelope)
		return ok && envelope.EventType == "audit_log" && envelope.Service == "messaging-service" && envelope.Payload.Level == "INFO"
	})).Return(nil).Once()

	emitter.Emit(context.Background(), "INFO", "hello", "req-1", nil)
	publisher.AssertExpectations(t)
}

func TestAuditEmitterNilReceiver(t *testing.T) {
	var emitter *AuditEmitter
	require.NotPanics(t, func() {
		emitter.Emit(context.Background(), "INFO", "hello", "req-1", nil)
	})
}
