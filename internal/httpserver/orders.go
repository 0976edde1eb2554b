package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mercadotech/internal/models"
	"github.com/Skotchmaster/mercadotech/pkg/apiclient"
)

type OrderHandler struct {
	API *apiclient.Client
}

func (h *OrderHandler) Mine(c echo.Context) error {
	orders, err := h.API.MyOrders(c.Request().Context())
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(http.StatusOK, map[string]any{"orders": orders})
}
