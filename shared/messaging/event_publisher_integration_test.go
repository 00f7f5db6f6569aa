//go:build integration

package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"rpg-creator/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"go.uber.org/zap"
)

func TestRabbitMQEventPublisher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12-management-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.AmqpURL(ctx)
	require.NoError(t, err)

	conn, err := ConnectRabbitMQ(url, 5, time.Second, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	publisher, err := NewRabbitMQEventPublisher(conn, "platform_events_test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })

	require.NoError(t, publisher.Publish(ctx, models.PlatformEvent{Type: models.EventGameSaved, DeviceID: "d1", GameID: "g1", Title: "Quest"}))

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	msg, ok, err := ch.Get("platform_events_test", true)
	require.NoError(t, err)
	require.True(t, ok, "message should be in the queue")

	var event models.PlatformEvent
	require.NoError(t, json.Unmarshal(msg.Body, &event))
	assert.Equal(t, models.EventGameSaved, event.Type)
	assert.Equal(t, "Quest", event.Title)
}
