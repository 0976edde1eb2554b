package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mercadotech/internal/guard"
	"github.com/Skotchmaster/mercadotech/internal/logging"
	"github.com/Skotchmaster/mercadotech/internal/models"
	"github.com/Skotchmaster/mercadotech/pkg/apiclient"
)

type StoreHandler struct {
	API *apiclient.Client
}

type dashboardResponse struct {
	Store    *models.Store    `json:"store"`
	Products []models.Product `json:"products"`
	Orders   []models.Order   `json:"orders"`
}

type storeCreatedResponse struct {
	Store    *models.Store `json:"store"`
	Redirect string        `json:"redirect"`
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *StoreHandler) CreateScreen(c echo.Context) error {
	return c.JSON(http.StatusOK, formScreen{
		Screen: "create-store",
		Fields: []string{"name", "description"},
		Submit: pathCreateStore,
		User:   guard.PrincipalFrom(c),
	})
}

func (h *StoreHandler) Create(c echo.Context) error {
	var in apiclient.StoreInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	store, err := h.API.CreateStore(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, storeCreatedResponse{Store: store, Redirect: pathDashboard})
}

// Dashboard shows the owner's store with its products and orders. An owner
// without a store is sent to the store creation screen.
func (h *StoreHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	store, err := h.API.MyStore(ctx)
	switch {
	case apiclient.IsNotFound(err), err == nil && store == nil:
		l := logging.FromContext(ctx)
		l.Debug().Msg("no store yet, redirecting to creation")
		return c.Redirect(http.StatusFound, pathCreateStore)
	case err != nil:
		return err
	}

	products, err := h.API.ListStoreProducts(ctx, store.ID)
	if err != nil {
		return err
	}
	orders, err := h.API.StoreOrders(ctx)
	if err != nil {
		return err
	}

	if products == nil {
		products = []models.Product{}
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(http.StatusOK, dashboardResponse{Store: store, Products: products, Orders: orders})
}

func (h *StoreHandler) UpdateStore(c echo.Context) error {
	var in apiclient.StoreInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	store, err := h.API.UpdateMyStore(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) CreateProduct(c echo.Context) error {
	in, err := bindProduct(c)
	if err != nil {
		return err
	}
	p, err := h.API.CreateProduct(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *StoreHandler) UpdateProduct(c echo.Context) error {
	in, err := bindProduct(c)
	if err != nil {
		return err
	}
	p, err := h.API.UpdateProduct(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *StoreHandler) DeleteProduct(c echo.Context) error {
	if err := h.API.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *StoreHandler) UpdateOrderStatus(c echo.Context) error {
	var req orderStatusRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return err
	}
	order, err := h.API.UpdateOrderStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func bindProduct(c echo.Context) (apiclient.ProductInput, error) {
	var in apiclient.ProductInput
	if err := bindValid(c, &in); err != nil {
		return in, err
	}
	if !in.Price.IsPositive() {
		return in, echo.NewHTTPError(http.StatusBadRequest, "price must be greater than 0")
	}
	return in, nil
}
