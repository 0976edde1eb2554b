package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mercadotech/internal/cart"
	"github.com/Skotchmaster/mercadotech/internal/events"
	"github.com/Skotchmaster/mercadotech/internal/guard"
	"github.com/Skotchmaster/mercadotech/internal/models"
	"github.com/Skotchmaster/mercadotech/pkg/apiclient"
)

// defaultStoreName labels line items whose store was never populated.
const defaultStoreName = "Tienda"

type CheckoutHandler struct {
	API    *apiclient.Client
	Cart   *cart.Store
	Events *events.Emitter
}

type orderPlacedResponse struct {
	Order    *models.Order `json:"order"`
	Stores   []string      `json:"stores"`
	Redirect string        `json:"redirect"`
}

func (h *CheckoutHandler) Summary(c echo.Context) error {
	return c.JSON(http.StatusOK, cartView(h.Cart))
}

// PlaceOrder turns the cart into an order for the given shipping address and
// empties the cart once the backend has accepted it.
func (h *CheckoutHandler) PlaceOrder(c echo.Context) error {
	var addr models.ShippingAddress
	if err := bindValid(c, &addr); err != nil {
		return err
	}

	items := h.Cart.Items()
	if len(items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	ctx := c.Request().Context()
	order, err := h.API.CreateOrder(ctx, apiclient.OrderInput{
		Items:           cart.WireItems(items),
		ShippingAddress: addr,
	})
	if err != nil {
		return err
	}

	h.Cart.Clear(ctx)

	ev := events.Event{Type: events.TypeOrderPlaced, OrderID: order.ID, Total: &order.Total, Stores: storeNames(items)}
	if p := guard.PrincipalFrom(c); p != nil {
		ev.UserID = p.ID
		ev.Email = p.Email
	}
	h.Events.Emit(ctx, events.TopicOrder, ev)

	return c.JSON(http.StatusCreated, orderPlacedResponse{
		Order:    order,
		Stores:   ev.Stores,
		Redirect: pathCatalog,
	})
}

// storeNames lists the distinct store names in first-seen order.
func storeNames(items []models.CartLineItem) []string {
	seen := make(map[string]bool)
	var names []string
	for _, it := range items {
		name := it.Store.Name
		if name == "" {
			name = defaultStoreName
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
