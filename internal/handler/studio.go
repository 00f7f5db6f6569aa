package handler

import (
	"net/http"

	"rpg-creator/internal/studio"
	"rpg-creator/shared/models"

	"github.com/labstack/echo/v4"
)

// ProjectDetailsRequest - название и описание проекта.
type ProjectDetailsRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PlaceElementRequest - блок, брошенный на холст.
type PlaceElementRequest struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// UpdateElementRequest - новый текст блока.
type UpdateElementRequest struct {
	Content string `json:"content"`
}

// SceneResponse - проект после добавления сцены.
type SceneResponse struct {
	Project *studio.Project `json:"project"`
	Scene   models.Scene    `json:"scene"`
}

// ElementResponse - проект после изменения блока.
type ElementResponse struct {
	Project *studio.Project      `json:"project"`
	Element models.PlacedElement `json:"element"`
}

func (h *Handler) getProject(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	project, err := h.Studio.Project(c.Request().Context(), deviceID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, project)
}

func (h *Handler) newProject(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	var req ProjectDetailsRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	project, err := h.Studio.NewProject(c.Request().Context(), deviceID, req.Title, req.Description)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, project)
}

func (h *Handler) setProjectDetails(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	var req ProjectDetailsRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	project, err := h.Studio.SetDetails(c.Request().Context(), deviceID, req.Title, req.Description)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, project)
}

func (h *Handler) createScene(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	project, scene, err := h.Studio.CreateScene(c.Request().Context(), deviceID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, SceneResponse{Project: project, Scene: scene})
}

func (h *Handler) selectScene(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	project, err := h.Studio.SelectScene(c.Request().Context(), deviceID, c.Param("sceneId"))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, project)
}

func (h *Handler) placeElement(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	var req PlaceElementRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	if req.Type == "" {
		return h.badRequest(c, "Element type is required")
	}
	project, element, err := h.Studio.PlaceElement(c.Request().Context(), deviceID, models.ElementType(req.Type), req.X, req.Y)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, ElementResponse{Project: project, Element: element})
}

func (h *Handler) updateElement(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	var req UpdateElementRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	project, element, err := h.Studio.UpdateElement(c.Request().Context(), deviceID, c.Param("elementId"), req.Content)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ElementResponse{Project: project, Element: element})
}

func (h *Handler) saveGame(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	game, err := h.Studio.SaveGame(c.Request().Context(), deviceID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, game)
}

func (h *Handler) getDashboard(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	dashboard, err := h.Studio.Dashboard(c.Request().Context(), deviceID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) publishGame(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	game, err := h.Studio.Publish(c.Request().Context(), deviceID, c.Param("id"))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, game)
}

func (h *Handler) deleteGame(c echo.Context) error {
	deviceID, err := h.deviceID(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	if err := h.Studio.Delete(c.Request().Context(), deviceID, c.Param("id")); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
