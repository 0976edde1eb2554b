package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Skotchmaster/mercadotech/internal/cart"
	"github.com/Skotchmaster/mercadotech/internal/models"
	"github.com/Skotchmaster/mercadotech/internal/session"
	"github.com/Skotchmaster/mercadotech/pkg/apiclient"
)

type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler renders every error as {"error": "<message>"}. Remote
// failures keep the backend's status and message; unknown errors are logged
// and reported as a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest, "quantity must be at least 1"
	case errors.Is(err, cart.ErrInvalidProduct):
		return http.StatusBadRequest, "product is required"
	case errors.Is(err, cart.ErrNotInCart):
		return http.StatusNotFound, "product is not in the cart"
	case errors.Is(err, models.ErrInvalidRole):
		return http.StatusBadRequest, "invalid role"
	case errors.Is(err, models.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid order status"
	case errors.Is(err, session.ErrMissingToken):
		return http.StatusBadGateway, "backend returned no session token"
	case apiclient.IsTransport(err):
		return http.StatusBadGateway, "network error"
	}

	if status := apiclient.StatusOf(err); status > 0 {
		return status, apiclient.MessageOf(err, http.StatusText(status))
	}
	return http.StatusInternalServerError, "internal server error"
}
