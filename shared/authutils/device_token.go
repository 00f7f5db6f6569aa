package authutils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rpg-creator/shared/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const deviceTokenIssuer = "rpg-creator"

// DeviceTokenManager выпускает и проверяет токены устройств (HS256).
type DeviceTokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewDeviceTokenManager создает менеджер токенов. Если логгер nil, используется Noop.
func NewDeviceTokenManager(secret string, ttl time.Duration, logger *zap.Logger) (*DeviceTokenManager, error) {
	if secret == "" {
		return nil, errors.New("device token secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("device token ttl must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceTokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger.Named("DeviceTokenManager"),
	}, nil
}

// Issue создает новое устройство и возвращает его ID вместе с подписанным токеном.
func (m *DeviceTokenManager) Issue() (deviceID string, token string, expiresAt time.Time, err error) {
	now := m.now()
	deviceID = uuid.NewString()
	expiresAt = now.Add(m.ttl)

	claims := models.DeviceClaims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    deviceTokenIssuer,
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to sign device token: %w", err)
	}
	m.logger.Debug("Device token issued", zap.String("deviceID", deviceID), zap.Time("expiresAt", expiresAt))
	return deviceID, token, expiresAt, nil
}

// VerifyToken проверяет подпись и срок действия токена и возвращает claims.
func (m *DeviceTokenManager) VerifyToken(_ context.Context, tokenString string) (*models.DeviceClaims, error) {
	log := m.logger.With(zap.String("tokenSnippet", tokenSnippet(tokenString)))
	claims := &models.DeviceClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Warn("Unexpected signing method", zap.Any("alg", token.Header["alg"]))
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(deviceTokenIssuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		log.Warn("Failed to parse or verify device token", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, models.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, models.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, models.ErrTokenInvalid
		}
		return nil, fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, models.ErrTokenInvalid
	}
	if claims.DeviceID == "" || claims.DeviceID != claims.Subject {
		log.Warn("Device token has inconsistent subject", zap.String("deviceID", claims.DeviceID), zap.String("subject", claims.Subject))
		return nil, fmt.Errorf("%w: device id missing", models.ErrTokenInvalid)
	}
	return claims, nil
}

// tokenSnippet возвращает безопасную для логгирования часть токена.
func tokenSnippet(tokenString string) string {
	const limit = 15
	if len(tokenString) > limit {
		return tokenString[:limit] + "..."
	}
	return tokenString
}
