package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// TranslationsResponse - текущий язык и весь словарь для него.
type TranslationsResponse struct {
	Language  string            `json:"language"`
	Languages []string          `json:"languages"`
	Messages  map[string]string `json:"messages"`
}

// LanguageRequest - запрос смены языка.
type LanguageRequest struct {
	Language string `json:"language"`
}

func (h *Handler) translations(c echo.Context, lang string) error {
	catalog := h.Languages.Catalog()
	return c.JSON(http.StatusOK, TranslationsResponse{
		Language:  lang,
		Languages: catalog.Languages(),
		Messages:  catalog.Messages(lang),
	})
}

func (h *Handler) getTranslations(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	lang, err := h.Languages.Current(c.Request().Context(), deviceID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return h.translations(c, lang)
}

func (h *Handler) setLanguage(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	var req LanguageRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	lang, err := h.Languages.Set(c.Request().Context(), deviceID, req.Language)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return h.translations(c, lang)
}

func (h *Handler) toggleLanguage(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	lang, err := h.Languages.Toggle(c.Request().Context(), deviceID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return h.translations(c, lang)
}
