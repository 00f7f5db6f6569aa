package models

import "context"

// contextKey - приватный тип для ключей контекста, чтобы избежать коллизий.
type contextKey string

// DeviceContextKey используется как ключ для хранения ID устройства в контексте запроса.
const DeviceContextKey contextKey = "deviceID"

// WithDeviceID кладет ID устройства в контекст.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, DeviceContextKey, deviceID)
}

// GetDeviceIDFromContext извлекает ID устройства из контекста.
func GetDeviceIDFromContext(ctx context.Context) (string, bool) {
	deviceID, ok := ctx.Value(DeviceContextKey).(string)
	return deviceID, ok && deviceID != ""
}
