package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ChoiceRequest - выбор игрока в текущем узле.
type ChoiceRequest struct {
	Index *int `json:"index"`
}

func (h *Handler) listPlayable(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	list, err := h.Catalog.PlayList(c.Request().Context(), deviceID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) startPlay(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	s, err := h.Playback.Start(c.Request().Context(), deviceID, c.Param("id"))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) getPlaySession(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	s, err := h.Playback.Session(c.Request().Context(), deviceID, c.Param("id"))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// makeChoice блокируется на время перехода и возвращает новый узел.
func (h *Handler) makeChoice(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	var req ChoiceRequest
	if err := c.Bind(&req); err != nil || req.Index == nil {
		return h.badRequest(c, "Choice index is required")
	}
	s, err := h.Playback.Choose(c.Request().Context(), deviceID, c.Param("id"), *req.Index)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) restartPlay(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	s, err := h.Playback.Restart(c.Request().Context(), deviceID, c.Param("id"))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
