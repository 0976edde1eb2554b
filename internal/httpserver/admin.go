package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mercadotech/internal/models"
	"github.com/Skotchmaster/mercadotech/pkg/apiclient"
)

type AdminHandler struct {
	API *apiclient.Client
}

func (h *AdminHandler) Stores(c echo.Context) error {
	stores, err := h.API.ListStores(c.Request().Context())
	if err != nil {
		return err
	}
	if stores == nil {
		stores = []models.Store{}
	}
	return c.JSON(http.StatusOK, map[string]any{"stores": stores})
}

func (h *AdminHandler) Approve(c echo.Context) error {
	store, err := h.API.ApproveStore(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store)
}
