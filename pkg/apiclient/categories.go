package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Skotchmaster/mercadotech/internal/models"
)

type CategoryInput struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := c.do(ctx, request{method: http.MethodGet, path: "/categories"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	var out models.Category
	if err := c.do(ctx, request{method: http.MethodPost, path: "/categories", body: in, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	var out models.Category
	err := c.do(ctx, request{method: http.MethodPut, path: "/categories/" + url.PathEscape(id), body: in, auth: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/categories/" + url.PathEscape(id), auth: true}, nil)
}
