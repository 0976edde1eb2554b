package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/mercadotech/internal/cart"
	"github.com/Skotchmaster/mercadotech/internal/logging"
	"github.com/Skotchmaster/mercadotech/internal/models"
	"github.com/Skotchmaster/mercadotech/internal/session"
	"github.com/Skotchmaster/mercadotech/pkg/apiclient"
)

type CatalogHandler struct {
	API      *apiclient.Client
	Sessions *session.Store
	Cart     *cart.Store
}

type landingResponse struct {
	Title     string            `json:"title"`
	User      *models.Principal `json:"user"`
	CartCount int               `json:"cartCount"`
	Links     map[string]string `json:"links"`
}

type catalogResponse struct {
	Products   []models.Product  `json:"products"`
	Categories []models.Category `json:"categories"`
	Filters    map[string]string `json:"filters"`
}

func (h *CatalogHandler) Landing(c echo.Context) error {
	links := map[string]string{"catalog": pathCatalog, "cart": "/cart"}
	p := h.Sessions.Principal()
	switch {
	case p == nil:
		links["login"] = "/login"
		links["register"] = "/register"
	case p.Role == models.RoleStore:
		links["dashboard"] = pathDashboard
	case p.Role == models.RoleAdmin:
		links["admin"] = "/admin"
	default:
		links["orders"] = "/my-orders"
	}
	return c.JSON(http.StatusOK, landingResponse{
		Title:     "MercadoTech",
		User:      p,
		CartCount: h.Cart.Count(),
		Links:     links,
	})
}

// List returns the products matching the query filters plus the category
// list. A failing category list is logged and left empty.
func (h *CatalogHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	f := apiclient.ProductFilter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
	}
	var err error
	if f.MinPrice, err = priceParam(c, "minPrice"); err != nil {
		return err
	}
	if f.MaxPrice, err = priceParam(c, "maxPrice"); err != nil {
		return err
	}

	products, err := h.API.ListProducts(ctx, f)
	if err != nil {
		return err
	}

	categories, err := h.API.ListCategories(ctx)
	if err != nil {
		l := logging.FromContext(ctx)
		l.Warn().Err(err).Msg("category list unavailable")
	}

	if products == nil {
		products = []models.Product{}
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return c.JSON(http.StatusOK, catalogResponse{
		Products:   products,
		Categories: categories,
		Filters:    activeFilters(c, "search", "category", "minPrice", "maxPrice"),
	})
}

func priceParam(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be a number").SetInternal(err)
	}
	return &d, nil
}

func activeFilters(c echo.Context, names ...string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		if v := c.QueryParam(n); v != "" {
			out[n] = v
		}
	}
	return out
}
