package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Skotchmaster/mercadotech/internal/models"
)

type OrderInput struct {
	Items           []CartItem             `json:"items"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
}

func (c *Client) CreateOrder(ctx context.Context, in OrderInput) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, request{method: http.MethodPost, path: "/orders", body: in, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, request{method: http.MethodGet, path: "/orders/my-orders", auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StoreOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, request{method: http.MethodGet, path: "/orders/store-orders", auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	var out models.Order
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/orders/" + url.PathEscape(id) + "/status",
		body: struct {
			Status models.OrderStatus `json:"status"`
		}{status},
		auth: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
