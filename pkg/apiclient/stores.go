package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Skotchmaster/mercadotech/internal/models"
)

type StoreInput struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description" validate:"required"`
}

func (c *Client) CreateStore(ctx context.Context, in StoreInput) (*models.Store, error) {
	var out models.Store
	if err := c.do(ctx, request{method: http.MethodPost, path: "/stores", body: in, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyStore returns the caller's store. A nil store with a nil error means the
// backend answered with an empty body.
func (c *Client) MyStore(ctx context.Context) (*models.Store, error) {
	var out *models.Store
	if err := c.do(ctx, request{method: http.MethodGet, path: "/stores/my-store", auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListStores(ctx context.Context) ([]models.Store, error) {
	var out []models.Store
	if err := c.do(ctx, request{method: http.MethodGet, path: "/stores", auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateMyStore(ctx context.Context, in StoreInput) (*models.Store, error) {
	var out models.Store
	if err := c.do(ctx, request{method: http.MethodPut, path: "/stores/my-store", body: in, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApproveStore(ctx context.Context, id string) (*models.Store, error) {
	var out models.Store
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/stores/" + url.PathEscape(id) + "/status",
		body:   struct{}{},
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
