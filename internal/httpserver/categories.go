package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mercadotech/internal/models"
	"github.com/Skotchmaster/mercadotech/pkg/apiclient"
)

type CategoryHandler struct {
	API *apiclient.Client
}

func (h *CategoryHandler) List(c echo.Context) error {
	cats, err := h.API.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return c.JSON(http.StatusOK, map[string]any{"categories": cats})
}

func (h *CategoryHandler) Create(c echo.Context) error {
	var in apiclient.CategoryInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	cat, err := h.API.CreateCategory(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) Update(c echo.Context) error {
	var in apiclient.CategoryInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	cat, err := h.API.UpdateCategory(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	if err := h.API.DeleteCategory(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
