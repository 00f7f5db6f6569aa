package models

import "time"

// PlatformEventType - тип события платформы, уходящего в очередь.
type PlatformEventType string

const (
	EventGameSaved     PlatformEventType = "game.saved"
	EventGamePublished PlatformEventType = "game.published"
	EventGameDeleted   PlatformEventType = "game.deleted"
)

// PlatformEvent - сообщение о значимом изменении на устройстве.
type PlatformEvent struct {
	Type       PlatformEventType `json:"type"`
	DeviceID   string            `json:"deviceId"`
	GameID     string            `json:"gameId,omitempty"`
	Title      string            `json:"title,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}
