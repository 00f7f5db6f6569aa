package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"rpg-creator/shared/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fakeVerifier(ctx context.Context, token string) (*models.DeviceClaims, error) {
	switch token {
	case "good":
		return &models.DeviceClaims{DeviceID: "device-1"}, nil
	case "expired":
		return nil, models.ErrTokenExpired
	default:
		return nil, models.ErrTokenInvalid
	}
}

func newProtectedEcho() *echo.Echo {
	e := echo.New()
	e.Use(EchoZapLogger(zap.NewNop()))
	e.GET("/api/me", func(c echo.Context) error {
		fromEcho, _ := DeviceIDFromContext(c)
		fromCtx, _ := models.GetDeviceIDFromContext(c.Request().Context())
		return c.JSON(http.StatusOK, map[string]string{"echo": fromEcho, "ctx": fromCtx})
	}, DeviceAuth(fakeVerifier, zap.NewNop()))
	return e
}

func TestDeviceAuth(t *testing.T) {
	e := newProtectedEcho()

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{name: "bearer header", header: "Bearer good", wantStatus: http.StatusOK, wantBody: `"ctx":"device-1"`},
		{name: "query token", query: "?token=good", wantStatus: http.StatusOK, wantBody: `"echo":"device-1"`},
		{name: "missing", wantStatus: http.StatusUnauthorized, wantBody: "missing token"},
		{name: "malformed header", header: "Token good", wantStatus: http.StatusUnauthorized, wantBody: "malformed"},
		{name: "expired", header: "Bearer expired", wantStatus: http.StatusUnauthorized, wantBody: "Token expired"},
		{name: "invalid", header: "bearer nope", wantStatus: http.StatusUnauthorized, wantBody: "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
