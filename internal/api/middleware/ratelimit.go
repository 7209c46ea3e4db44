package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skinscan/api/internal/api/metrics"
	"github.com/skinscan/api/internal/core/ports"
)

// RateLimit rejects requests once the client IP has exhausted its budget.
// Limiter failures let the request through.
func RateLimit(limiter ports.RateLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn().Err(err).Str("path", c.Path()).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if !allowed {
				metrics.RateLimitedTotal.WithLabelValues(c.Path()).Inc()
				return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "Too many requests"})
			}
			return next(c)
		}
	}
}
