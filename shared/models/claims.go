package models

import "github.com/golang-jwt/jwt/v5"

// DeviceClaims - содержимое токена устройства.
// Устройство соответствует профилю браузера, Subject хранит его ID.
type DeviceClaims struct {
	DeviceID             string `json:"device_id"`
	jwt.RegisteredClaims        // Issuer, Subject, ExpiresAt, IssuedAt, ID (JTI)
}
