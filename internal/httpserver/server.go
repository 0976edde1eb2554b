// Package httpserver is the storefront's view layer: each screen of the shop
// is a set of JSON endpoints served to the local user.
package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/Skotchmaster/mercadotech/internal/cart"
	"github.com/Skotchmaster/mercadotech/internal/events"
	"github.com/Skotchmaster/mercadotech/internal/session"
	"github.com/Skotchmaster/mercadotech/pkg/apiclient"
)

type Deps struct {
	Sessions *session.Store
	Cart     *cart.Store
	API      *apiclient.Client
	Events   *events.Emitter
	Log      zerolog.Logger
}

func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Validator = NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), RequestLogger(d.Log))

	Register(e, d)
	return e
}
