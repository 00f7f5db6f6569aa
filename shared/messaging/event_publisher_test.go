package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"rpg-creator/shared/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, msg)
	return args.Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func TestRabbitMQEventPublisher_Publish(t *testing.T) {
	ch := new(mockChannel)
	ch.On("PublishWithContext", "", "platform_events", mock.MatchedBy(func(msg amqp.Publishing) bool {
		var event models.PlatformEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return false
		}
		return msg.DeliveryMode == amqp.Persistent &&
			msg.ContentType == "application/json" &&
			event.Type == models.EventGamePublished &&
			event.GameID == "g1" &&
			!event.OccurredAt.IsZero()
	})).Return(nil).Once()

	p := newRabbitMQEventPublisher(ch, "platform_events", zap.NewNop())
	err := p.Publish(context.Background(), models.PlatformEvent{Type: models.EventGamePublished, DeviceID: "d1", GameID: "g1"})

	require.NoError(t, err)
	ch.AssertExpectations(t)
}

func TestRabbitMQEventPublisher_RetriesThenFails(t *testing.T) {
	ch := new(mockChannel)
	ch.On("PublishWithContext", "", "q", mock.Anything).Return(errors.New("channel closed")).Times(publishAttempts)

	p := newRabbitMQEventPublisher(ch, "q", zap.NewNop())
	p.backoff = 0

	err := p.Publish(context.Background(), models.PlatformEvent{Type: models.EventGameSaved})
	assert.ErrorContains(t, err, "after 3 attempts")
	ch.AssertNumberOfCalls(t, "PublishWithContext", publishAttempts)
}

func TestRabbitMQEventPublisher_SucceedsOnRetry(t *testing.T) {
	ch := new(mockChannel)
	ch.On("PublishWithContext", "", "q", mock.Anything).Return(errors.New("temporary")).Once()
	ch.On("PublishWithContext", "", "q", mock.Anything).Return(nil).Once()

	p := newRabbitMQEventPublisher(ch, "q", zap.NewNop())
	p.backoff = 0

	require.NoError(t, p.Publish(context.Background(), models.PlatformEvent{Type: models.EventGameDeleted}))
	ch.AssertNumberOfCalls(t, "PublishWithContext", 2)
}

func TestLoggingEventPublisher(t *testing.T) {
	p := NewLoggingEventPublisher(zap.NewNop())
	assert.NoError(t, p.Publish(context.Background(), models.PlatformEvent{Type: models.EventGameSaved}))
	assert.NoError(t, p.Close())
}
