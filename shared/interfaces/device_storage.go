package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rpg-creator/shared/models"
)

// DeviceStorage - хранилище строковых значений по ключу в пределах одного устройства.
// Повторяет контракт localStorage: значения - строки, последняя запись побеждает.
type DeviceStorage interface {
	// GetItem возвращает значение или models.ErrNotFound, если ключа нет.
	GetItem(ctx context.Context, deviceID, key string) (string, error)
	SetItem(ctx context.Context, deviceID, key, value string) error
	// RemoveItem удаляет ключ. Отсутствие ключа ошибкой не считается.
	RemoveItem(ctx context.Context, deviceID, key string) error
}

// LoadJSON читает значение по ключу и декодирует его в dst.
// Возвращает found=false (без ошибки), если ключа нет.
func LoadJSON(ctx context.Context, storage DeviceStorage, deviceID, key string, dst any) (bool, error) {
	raw, err := storage.GetItem(ctx, deviceID, key)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON кодирует value в JSON и записывает по ключу.
func SaveJSON(ctx context.Context, storage DeviceStorage, deviceID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return storage.SetItem(ctx, deviceID, key, string(raw))
}
