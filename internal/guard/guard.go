// Package guard enforces "must be logged in" for view routes. Role checks
// belong to the individual pages.
package guard

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mercadotech/internal/models"
)

const (
	LoginPath    = "/login"
	CtxPrincipal = "principal"
)

type SessionState interface {
	Pending() bool
	Principal() *models.Principal
}

type Decision int

const (
	Allow Decision = iota
	Loading
	RedirectToLogin
)

func Check(s SessionState) Decision {
	if s.Pending() {
		return Loading
	}
	if s.Principal() == nil {
		return RedirectToLogin
	}
	return Allow
}

// RequireLogin suspends requests while the session is being restored and
// redirects anonymous ones to the login screen.
func RequireLogin(s SessionState) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch Check(s) {
			case Loading:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			case RedirectToLogin:
				return c.Redirect(http.StatusFound, LoginPath)
			}
			c.Set(CtxPrincipal, s.Principal())
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by RequireLogin.
func PrincipalFrom(c echo.Context) *models.Principal {
	p, _ := c.Get(CtxPrincipal).(*models.Principal)
	return p
}

func HasRole(p *models.Principal, roles ...models.Role) bool {
	return p != nil && slices.Contains(roles, p.Role)
}
