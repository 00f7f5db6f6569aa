package handler

import (
	"net/http"

	"rpg-creator/internal/session"
	"rpg-creator/internal/wallet"
	"rpg-creator/shared/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Источники данных кошелька в запросе POST /api/auth/wallet.
const (
	walletSourceExtension = "extension"
	walletSourceRPC       = "rpc"
)

// DeviceResponse - ответ на выдачу токена устройства.
type DeviceResponse struct {
	DeviceID  string `json:"deviceId"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// MeResponse - текущая личность устройства.
type MeResponse struct {
	Authenticated bool             `json:"authenticated"`
	Identity      *models.Identity `json:"identity"`
}

// WalletRequest - данные, которые браузер получил от расширения кошелька.
// Source "rpc" означает, что аккаунты нужно запросить у серверного узла.
type WalletRequest struct {
	Accounts []string `json:"accounts"`
	ChainID  string   `json:"chainId"`
	Source   string   `json:"source"`
}

// WalletEventRequest - событие расширения кошелька.
type WalletEventRequest struct {
	Event    string   `json:"event"`
	Accounts []string `json:"accounts"`
	ChainID  string   `json:"chainId"`
}

func (h *Handler) issueDevice(c echo.Context) error {
	deviceID, token, expiresAt, err := h.Tokens.Issue()
	if err != nil {
		h.logger.Error("Failed to issue device token", zap.Error(err))
		return h.handleServiceError(c, err)
	}
	h.logger.Info("Device token issued", zap.String("deviceID", deviceID))
	return c.JSON(http.StatusCreated, DeviceResponse{
		DeviceID:  deviceID,
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	})
}

// store возвращает сессию устройства из контекста запроса.
func (h *Handler) store(c echo.Context) (*session.Store, error) {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return nil, err
	}
	return h.Sessions.For(c.Request().Context(), deviceID)
}

func (h *Handler) getMe(c echo.Context) error {
	store, err := h.store(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	identity := store.Current()
	return c.JSON(http.StatusOK, MeResponse{Authenticated: identity != nil, Identity: identity})
}

func (h *Handler) register(c echo.Context) error {
	var req session.RegisterInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	store, err := h.store(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	identity, err := store.RegisterWithEmail(c.Request().Context(), req)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, identity)
}

func (h *Handler) login(c echo.Context) error {
	var req session.LoginInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	store, err := h.store(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	identity, err := store.LoginWithEmail(c.Request().Context(), req)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, identity)
}

// walletProvider выбирает провайдер кошелька по источнику запроса.
// nil означает, что провайдера нет (расширение не установлено).
func (h *Handler) walletProvider(source string, accounts []string, chainID string) wallet.Provider {
	switch source {
	case walletSourceRPC:
		if h.WalletRPC == nil {
			return nil
		}
		return h.WalletRPC
	case walletSourceExtension, "":
		if accounts == nil {
			return nil
		}
		return wallet.NewReportedProvider(accounts, chainID)
	default:
		return nil
	}
}

func (h *Handler) connectWallet(c echo.Context) error {
	var req WalletRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	store, err := h.store(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	identity, err := store.ConnectWallet(c.Request().Context(), h.walletProvider(req.Source, req.Accounts, req.ChainID))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, identity)
}

func (h *Handler) walletEvent(c echo.Context) error {
	var req WalletEventRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	store, err := h.store(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	ctx := c.Request().Context()

	var identity *models.Identity
	switch req.Event {
	case "accountsChanged":
		identity, err = store.HandleAccountsChanged(ctx, req.Accounts, wallet.NewReportedProvider(req.Accounts, req.ChainID))
	case "chainChanged":
		identity, err = store.HandleChainChanged(ctx, req.ChainID)
	default:
		return h.badRequest(c, "Unknown wallet event")
	}
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, MeResponse{Authenticated: identity != nil, Identity: identity})
}

func (h *Handler) logout(c echo.Context) error {
	store, err := h.store(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	if err := store.Logout(c.Request().Context()); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) updateProfile(c echo.Context) error {
	var patch models.ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	store, err := h.store(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	identity, err := store.UpdateProfile(c.Request().Context(), patch)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, MeResponse{Authenticated: identity != nil, Identity: identity})
}
