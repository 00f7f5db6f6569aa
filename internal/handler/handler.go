// Package handler - HTTP API платформы поверх echo.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"rpg-creator/internal/catalog"
	"rpg-creator/internal/chat"
	"rpg-creator/internal/i18n"
	"rpg-creator/internal/playback"
	"rpg-creator/internal/realtime"
	"rpg-creator/internal/session"
	"rpg-creator/internal/studio"
	"rpg-creator/internal/wallet"
	sharedMiddleware "rpg-creator/shared/middleware"
	"rpg-creator/shared/models"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// APIError - стандартный ответ об ошибке.
type APIError struct {
	Message string `json:"message"`
}

// DeviceTokens выдает и проверяет токены устройств.
type DeviceTokens interface {
	Issue() (deviceID string, token string, expiresAt time.Time, err error)
	VerifyToken(ctx context.Context, tokenString string) (*models.DeviceClaims, error)
}

// Deps - сервисы, которые обслуживает HTTP-слой.
type Deps struct {
	Tokens    DeviceTokens
	Languages *i18n.Languages
	Sessions  *session.Manager
	Studio    *studio.Service
	Playback  *playback.Service
	Catalog   *catalog.Service
	Chat      *chat.Service
	Realtime  *realtime.Handler
	// WalletRPC - серверный провайдер кошелька; nil, если WALLET_RPC_URL не задан.
	WalletRPC wallet.Provider
}

// Handler обрабатывает HTTP запросы платформы.
type Handler struct {
	Deps
	logger *zap.Logger
}

// NewHandler создает обработчик.
func NewHandler(deps Deps, logger *zap.Logger) *Handler {
	return &Handler{Deps: deps, logger: logger.Named("HTTPHandler")}
}

// RegisterRoutes регистрирует маршруты API.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	deviceAuth := sharedMiddleware.DeviceAuth(h.Tokens.VerifyToken, h.logger)
	if h.Realtime != nil {
		e.GET("/ws", h.Realtime.ServeWS, deviceAuth)
	}

	api := e.Group("/api")
	api.POST("/devices", h.issueDevice)

	secured := api.Group("", deviceAuth)
	secured.GET("/home", h.getHome)

	i18nGroup := secured.Group("/i18n")
	{
		i18nGroup.GET("", h.getTranslations)
		i18nGroup.PUT("/language", h.setLanguage)
		i18nGroup.POST("/toggle", h.toggleLanguage)
	}

	authGroup := secured.Group("/auth")
	{
		authGroup.GET("/me", h.getMe)
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.POST("/wallet", h.connectWallet)
		authGroup.POST("/wallet/events", h.walletEvent)
		authGroup.POST("/logout", h.logout)
		authGroup.PATCH("/profile", h.updateProfile)
	}

	studioGroup := secured.Group("/studio/project")
	{
		studioGroup.GET("", h.getProject)
		studioGroup.POST("", h.newProject)
		studioGroup.PUT("/details", h.setProjectDetails)
		studioGroup.POST("/scenes", h.createScene)
		studioGroup.PUT("/scenes/:sceneId/select", h.selectScene)
		studioGroup.POST("/elements", h.placeElement)
		studioGroup.PUT("/elements/:elementId", h.updateElement)
		studioGroup.POST("/save", h.saveGame)
	}

	playGroup := secured.Group("/play")
	{
		playGroup.GET("", h.listPlayable)
		playGroup.POST("/:id", h.startPlay)
		playGroup.GET("/:id", h.getPlaySession)
		playGroup.POST("/:id/choice", h.makeChoice)
		playGroup.POST("/:id/restart", h.restartPlay)
	}

	dashboardGroup := secured.Group("/dashboard")
	{
		dashboardGroup.GET("", h.getDashboard)
		dashboardGroup.POST("/:id/publish", h.publishGame)
		dashboardGroup.DELETE("/:id", h.deleteGame)
	}

	secured.GET("/community", h.getCommunity)

	aiGroup := secured.Group("/ai")
	{
		aiGroup.GET("/types", h.getGenerationTypes)
		aiGroup.GET("/messages", h.getMessages)
		aiGroup.POST("/messages", h.sendMessage)
		aiGroup.DELETE("/messages", h.clearMessages)
		aiGroup.GET("/messages/:index/export", h.exportMessage)
	}
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// deviceID достает ID устройства, положенный DeviceAuth.
func (h *Handler) deviceID(c echo.Context) (string, error) {
	deviceID, ok := sharedMiddleware.DeviceIDFromContext(c)
	if !ok {
		return "", models.ErrUnauthorized
	}
	return deviceID, nil
}

func (h *Handler) badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, APIError{Message: msg})
}

// handleServiceError переводит ошибку сервиса в HTTP ответ.
// Ошибки валидации форм переводятся на язык устройства.
func (h *Handler) handleServiceError(c echo.Context, err error) error {
	var statusCode int
	var apiErr APIError

	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: h.translate(c, validationErr.Key)}
	case errors.Is(err, models.ErrValidationFailed):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		apiErr = APIError{Message: "Unauthorized"}
	case errors.Is(err, models.ErrNotAuthenticated):
		statusCode = http.StatusUnauthorized
		apiErr = APIError{Message: "Not authenticated"}
	case errors.Is(err, models.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		apiErr = APIError{Message: "Invalid email or password"}
	case errors.Is(err, models.ErrDuplicateIdentity):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: "User with this email already exists"}
	case errors.Is(err, models.ErrWalletUnavailable):
		statusCode = http.StatusPreconditionFailed
		apiErr = APIError{Message: "MetaMask is not installed. Please install MetaMask to continue."}
	case errors.Is(err, models.ErrNoAccounts):
		statusCode = http.StatusUnprocessableEntity
		apiErr = APIError{Message: "No accounts found. Please connect your wallet."}
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: "Resource not found"}
	case errors.Is(err, models.ErrSessionNotStarted):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrInvalidChoice), errors.Is(err, models.ErrNoActiveScene):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrTransitionInProgress):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrRemoteCallFailed):
		statusCode = http.StatusBadGateway
		apiErr = APIError{Message: "Remote service is unavailable"}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		statusCode = http.StatusServiceUnavailable
		apiErr = APIError{Message: "Request cancelled"}
	default:
		h.logger.Error("Unhandled service error", zap.String("path", c.Path()), zap.Error(err))
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}
	return c.JSON(statusCode, apiErr)
}

// translate переводит ключ на язык устройства запроса.
func (h *Handler) translate(c echo.Context, key string) string {
	deviceID, ok := sharedMiddleware.DeviceIDFromContext(c)
	if !ok {
		return h.Languages.Catalog().T(i18n.DefaultLanguage, key)
	}
	return h.Languages.T(c.Request().Context(), deviceID, key)
}
