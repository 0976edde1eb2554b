package httpserver

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Skotchmaster/mercadotech/internal/logging"
	"github.com/Skotchmaster/mercadotech/internal/metrics"
)

// RequestLogger puts a request-scoped logger into the request context and
// logs one line per request. Errors are rendered here so the logged status
// is the one the client saw.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Request().Header.Get(echo.HeaderXRequestID)
			}

			lc := base.With().
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("url", c.Request().URL.Path).
				Str("remote_ip", c.RealIP())
			if rid != "" {
				lc = lc.Str("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			l := lc.Logger()

			c.SetRequest(c.Request().WithContext(logging.IntoContext(c.Request().Context(), l)))

			start := time.Now()
			err := next(c)
			dur := time.Since(start)

			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}
			status := c.Response().Status

			metrics.HTTPRequestsTotal.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(c.Request().Method, c.Path()).Observe(dur.Seconds())

			var ev *zerolog.Event
			switch {
			case err != nil || status >= 500:
				ev = l.Error().Err(err)
			case status >= 400:
				ev = l.Warn()
			default:
				ev = l.Info().Int64("bytes", c.Response().Size)
			}
			ev.Int("status", status).Int64("duration_ms", dur.Milliseconds()).Msg("request completed")
			return nil
		}
	}
}
