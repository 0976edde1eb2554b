package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/mercadotech/internal/models"
)

// ProductFilter holds catalog filters. Zero values are left out of the query.
type ProductFilter struct {
	Search   string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

func (f ProductFilter) values() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.MinPrice != nil {
		q.Set("minPrice", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		q.Set("maxPrice", f.MaxPrice.String())
	}
	return q
}

type ProductInput struct {
	Name        string          `json:"name"        validate:"required"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"       validate:"gte=0"`
	Category    string          `json:"category"    validate:"required"`
	Images      []string        `json:"images"`
	Store       string          `json:"store,omitempty"`
}

func (c *Client) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products", query: f.values()}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListStoreProducts(ctx context.Context, storeID string) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products/store/" + url.PathEscape(storeID)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, request{method: http.MethodPost, path: "/products", body: in, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	var out models.Product
	err := c.do(ctx, request{method: http.MethodPut, path: "/products/" + url.PathEscape(id), body: in, auth: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/products/" + url.PathEscape(id), auth: true}, nil)
}
