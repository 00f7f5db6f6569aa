package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"rpg-creator/shared/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// deviceIDKey - ключ echo.Context, под которым лежит ID устройства.
const deviceIDKey = "deviceID"

// DeviceTokenVerifier проверяет строку токена и возвращает claims устройства.
type DeviceTokenVerifier func(ctx context.Context, tokenString string) (*models.DeviceClaims, error)

// DeviceAuth проверяет токен устройства из заголовка Authorization (Bearer)
// или, для WebSocket, из параметра запроса token. ID устройства кладется
// и в echo.Context, и в context.Context запроса.
func DeviceAuth(verify DeviceTokenVerifier, logger *zap.Logger) echo.MiddlewareFunc {
	log := logger.Named("DeviceAuth")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := extractToken(c)
			if err != nil {
				log.Warn("Device token missing or malformed", zap.String("path", c.Path()), zap.Error(err))
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized: " + err.Error()})
			}

			claims, err := verify(c.Request().Context(), tokenString)
			if err != nil {
				msg := "Unauthorized: Invalid token"
				if errors.Is(err, models.ErrTokenExpired) {
					msg = "Unauthorized: Token expired"
				}
				log.Warn("Device token verification failed", zap.String("path", c.Path()), zap.Error(err))
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": msg})
			}

			c.Set(deviceIDKey, claims.DeviceID)
			req := c.Request()
			c.SetRequest(req.WithContext(models.WithDeviceID(req.Context(), claims.DeviceID)))
			return next(c)
		}
	}
}

// DeviceIDFromContext возвращает ID устройства, положенный DeviceAuth.
func DeviceIDFromContext(c echo.Context) (string, bool) {
	deviceID, ok := c.Get(deviceIDKey).(string)
	if ok && deviceID != "" {
		return deviceID, true
	}
	return models.GetDeviceIDFromContext(c.Request().Context())
}

func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", errors.New("missing token")
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("malformed token header")
	}
	return parts[1], nil
}
