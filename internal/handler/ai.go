package handler

import (
	"net/http"
	"strconv"

	"rpg-creator/internal/chat"
	"rpg-creator/shared/models"

	"github.com/labstack/echo/v4"
)

// GenerationTypesResponse - виды генерации и готовые заготовки.
type GenerationTypesResponse struct {
	Types        []chat.GenerationType `json:"types"`
	QuickPrompts []string              `json:"quickPrompts"`
	Default      string                `json:"default"`
}

// SendMessageRequest - сообщение автора генератору.
type SendMessageRequest struct {
	Type  string `json:"type"`
	Input string `json:"input"`
}

func (h *Handler) getGenerationTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, GenerationTypesResponse{
		Types:        chat.GenerationTypes,
		QuickPrompts: chat.QuickPrompts,
		Default:      chat.DefaultGenerationType,
	})
}

func (h *Handler) getMessages(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	messages, err := h.Chat.Transcript(c.Request().Context(), deviceID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return c.JSON(http.StatusOK, messages)
}

// sendMessage возвращает 200 и при сбое генератора: извинение - часть разговора.
func (h *Handler) sendMessage(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	reply, err := h.Chat.Send(c.Request().Context(), deviceID, req.Type, req.Input)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, reply)
}

func (h *Handler) clearMessages(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	if err := h.Chat.Clear(c.Request().Context(), deviceID); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) exportMessage(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return h.badRequest(c, "Invalid message index")
	}
	export, err := h.Chat.Export(c.Request().Context(), deviceID, index)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, export)
}
