package handler

import (
	"net/http"

	"rpg-creator/internal/catalog"

	"github.com/labstack/echo/v4"
)

func (h *Handler) getHome(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	home, err := h.Catalog.Home(c.Request().Context(), deviceID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, home)
}

func (h *Handler) getCommunity(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	tab := catalog.Tab(c.QueryParam("tab"))
	switch tab {
	case "", catalog.TabTrending, catalog.TabNew, catalog.TabTopRated, catalog.TabCreators:
	default:
		return h.badRequest(c, "Unknown community tab")
	}
	view, err := h.Catalog.Community(c.Request().Context(), deviceID, tab, c.QueryParam("q"))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}
