package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rpg-creator/shared/interfaces"
	"rpg-creator/shared/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// DefaultEventsQueue - очередь событий платформы по умолчанию.
	DefaultEventsQueue = "platform_events"

	publishAttempts = 3
	publishBackoff  = 200 * time.Millisecond
)

// amqpChannel - часть *amqp.Channel, нужная издателю.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var _ interfaces.EventPublisher = (*RabbitMQEventPublisher)(nil)

// RabbitMQEventPublisher публикует события платформы в durable-очередь.
type RabbitMQEventPublisher struct {
	channel   amqpChannel
	queueName string
	backoff   time.Duration
	logger    *zap.Logger
}

// NewRabbitMQEventPublisher открывает канал и объявляет очередь, если ее еще нет.
func NewRabbitMQEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (*RabbitMQEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	if queueName == "" {
		queueName = DefaultEventsQueue
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("event publisher: не удалось открыть канал: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("event publisher: не удалось объявить очередь '%s': %w", queueName, err)
	}
	logger.Info("Очередь событий объявлена", zap.String("queue", queueName))
	return newRabbitMQEventPublisher(ch, queueName, logger), nil
}

func newRabbitMQEventPublisher(ch amqpChannel, queueName string, logger *zap.Logger) *RabbitMQEventPublisher {
	return &RabbitMQEventPublisher{
		channel:   ch,
		queueName: queueName,
		backoff:   publishBackoff,
		logger:    logger.Named("EventPublisher"),
	}
}

// Publish сериализует событие и отправляет его, делая до трех попыток.
func (p *RabbitMQEventPublisher) Publish(ctx context.Context, event models.PlatformEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal platform event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}

	log := p.logger.With(zap.String("type", string(event.Type)), zap.String("deviceID", event.DeviceID), zap.String("gameID", event.GameID))
	var lastErr error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		lastErr = p.channel.PublishWithContext(ctx, "", p.queueName, false, false, msg)
		if lastErr == nil {
			log.Debug("Platform event published", zap.Int("attempt", attempt))
			return nil
		}
		log.Warn("Не удалось опубликовать событие", zap.Int("attempt", attempt), zap.Int("max_attempts", publishAttempts), zap.Error(lastErr))
		if attempt == publishAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff):
		}
	}
	return fmt.Errorf("failed to publish platform event after %d attempts: %w", publishAttempts, lastErr)
}

// Close закрывает канал.
func (p *RabbitMQEventPublisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}

var _ interfaces.EventPublisher = (*LoggingEventPublisher)(nil)

// LoggingEventPublisher только пишет событие в лог. Используется, когда брокер не настроен.
type LoggingEventPublisher struct {
	logger *zap.Logger
}

// NewLoggingEventPublisher создает издателя-заглушку.
func NewLoggingEventPublisher(logger *zap.Logger) *LoggingEventPublisher {
	return &LoggingEventPublisher{logger: logger.Named("EventPublisher")}
}

func (p *LoggingEventPublisher) Publish(_ context.Context, event models.PlatformEvent) error {
	p.logger.Info("Platform event (broker disabled)",
		zap.String("type", string(event.Type)),
		zap.String("deviceID", event.DeviceID),
		zap.String("gameID", event.GameID),
	)
	return nil
}

func (p *LoggingEventPublisher) Close() error { return nil }
