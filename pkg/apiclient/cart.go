package apiclient

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/mercadotech/internal/models"
)

// CartItem is the wire form of a line item sent to the backend.
type CartItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Store    string `json:"store"`
}

type CartEntry struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
	Store    models.Ref     `json:"store"`
}

type CartResponse struct {
	Items []CartEntry `json:"items"`
}

type cartBody struct {
	Items []CartItem `json:"items"`
}

func (c *Client) GetCart(ctx context.Context) (*CartResponse, error) {
	var out CartResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/cart", auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReplaceCart overwrites the remote cart with items.
func (c *Client) ReplaceCart(ctx context.Context, items []CartItem) (*CartResponse, error) {
	var out CartResponse
	err := c.do(ctx, request{method: http.MethodPut, path: "/cart", body: cartBody{Items: nonNil(items)}, auth: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SyncCart merges items into the remote cart and returns the merged result.
func (c *Client) SyncCart(ctx context.Context, items []CartItem) (*CartResponse, error) {
	var out CartResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "/cart/sync", body: cartBody{Items: nonNil(items)}, auth: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func nonNil(items []CartItem) []CartItem {
	if items == nil {
		return []CartItem{}
	}
	return items
}
