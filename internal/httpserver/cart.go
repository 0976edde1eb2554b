package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/mercadotech/internal/cart"
	"github.com/Skotchmaster/mercadotech/internal/models"
)

type CartHandler struct {
	Cart *cart.Store
}

type cartResponse struct {
	Items []models.CartLineItem `json:"items"`
	Total decimal.Decimal       `json:"total"`
	Count int                   `json:"count"`
	State string                `json:"state"`
}

type addItemRequest struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func cartView(s *cart.Store) cartResponse {
	return cartResponse{
		Items: s.Items(),
		Total: s.Total(),
		Count: s.Count(),
		State: s.State().String(),
	}
}

func (h *CartHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, cartView(h.Cart))
}

// Add puts a product snapshot into the cart. The quantity defaults to 1 and
// is clamped to the product's stock.
func (h *CartHandler) Add(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	if req.Product.ID == "" {
		return cart.ErrInvalidProduct
	}
	if req.Product.Stock < 1 {
		return echo.NewHTTPError(http.StatusConflict, "product is out of stock")
	}

	qty := max(1, min(req.Product.Stock, req.Quantity))
	if err := h.Cart.AddItem(c.Request().Context(), req.Product, qty); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartView(h.Cart))
}

func (h *CartHandler) SetQuantity(c echo.Context) error {
	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	if err := h.Cart.SetQuantity(c.Request().Context(), c.Param("id"), req.Quantity); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartView(h.Cart))
}

func (h *CartHandler) Remove(c echo.Context) error {
	h.Cart.RemoveItem(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, cartView(h.Cart))
}

func (h *CartHandler) Clear(c echo.Context) error {
	h.Cart.Clear(c.Request().Context())
	return c.JSON(http.StatusOK, cartView(h.Cart))
}
