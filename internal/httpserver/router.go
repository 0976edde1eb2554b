package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skotchmaster/mercadotech/internal/guard"
	"github.com/Skotchmaster/mercadotech/internal/models"
)

const (
	pathHome        = "/"
	pathCatalog     = "/catalog"
	pathCreateStore = "/create-store"
	pathDashboard   = "/store-dashboard"
	pathRegister    = "/register"
	pathGoogleLogin = "/google-login"
)

func Register(e *echo.Echo, d *Deps) {
	health := &HealthHandler{Sessions: d.Sessions}
	auth := &AuthHandler{Sessions: d.Sessions, Events: d.Events}
	catalog := &CatalogHandler{API: d.API, Sessions: d.Sessions, Cart: d.Cart}
	cart := &CartHandler{Cart: d.Cart}
	checkout := &CheckoutHandler{API: d.API, Cart: d.Cart, Events: d.Events}
	stores := &StoreHandler{API: d.API}
	admin := &AdminHandler{API: d.API}
	categories := &CategoryHandler{API: d.API}
	orders := &OrderHandler{API: d.API}

	e.GET("/health/live", health.Live)
	e.GET("/health/ready", health.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET(pathHome, catalog.Landing)
	e.GET(pathCatalog, catalog.List)

	e.GET(guard.LoginPath, auth.LoginScreen)
	e.POST(guard.LoginPath, auth.Login)
	e.GET(pathRegister, auth.RegisterScreen)
	e.POST(pathRegister, auth.Register)
	e.POST(pathGoogleLogin, auth.GoogleLogin)
	e.POST("/logout", auth.Logout)
	e.GET("/session", auth.Session)

	e.GET("/cart", cart.Get)
	e.DELETE("/cart", cart.Clear)
	e.POST("/cart/items", cart.Add)
	e.PUT("/cart/items/:id", cart.SetQuantity)
	e.DELETE("/cart/items/:id", cart.Remove)

	loggedIn := guard.RequireLogin(d.Sessions)

	e.GET("/checkout", checkout.Summary, loggedIn)
	e.POST("/checkout", checkout.PlaceOrder, loggedIn)

	e.GET(pathCreateStore, stores.CreateScreen, loggedIn, requireRole(models.RoleStore))
	e.POST(pathCreateStore, stores.Create, loggedIn, requireRole(models.RoleStore))

	dash := e.Group(pathDashboard, loggedIn, requireRole(models.RoleStore))
	dash.GET("", stores.Dashboard)
	dash.PUT("/store", stores.UpdateStore)
	dash.POST("/products", stores.CreateProduct)
	dash.PUT("/products/:id", stores.UpdateProduct)
	dash.DELETE("/products/:id", stores.DeleteProduct)
	dash.PATCH("/orders/:id/status", stores.UpdateOrderStatus)

	adm := e.Group("/admin", loggedIn, requireRole(models.RoleAdmin))
	adm.GET("", admin.Stores)
	adm.POST("/stores/:id/approve", admin.Approve)

	cats := e.Group("/categories", loggedIn, requireRole(models.RoleAdmin))
	cats.GET("", categories.List)
	cats.POST("", categories.Create)
	cats.PUT("/:id", categories.Update)
	cats.DELETE("/:id", categories.Delete)

	e.GET("/my-orders", orders.Mine, loggedIn, requireRole(models.RoleClient))
}

// requireRole sends principals without one of roles back to the home page.
// It runs after guard.RequireLogin.
func requireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !guard.HasRole(guard.PrincipalFrom(c), roles...) {
				return c.Redirect(http.StatusFound, pathHome)
			}
			return next(c)
		}
	}
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}
