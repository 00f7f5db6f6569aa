package interfaces

import (
	"context"

	"rpg-creator/shared/models"
)

// EventPublisher отправляет события платформы во внешнюю очередь.
type EventPublisher interface {
	Publish(ctx context.Context, event models.PlatformEvent) error
	Close() error
}
