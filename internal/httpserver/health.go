package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	Sessions interface{ Pending() bool }
}

func (h *HealthHandler) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// Ready reports 503 until the persisted session has been restored.
func (h *HealthHandler) Ready(c echo.Context) error {
	if h.Sessions.Pending() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "restoring"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
