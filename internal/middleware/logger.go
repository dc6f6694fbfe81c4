package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/petfood-ae/storefront/internal/logger"
)

// RequestLogger logs method, path, status and latency of every request
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()

		path := c.Path()
		if raw := string(c.Request().URI().QueryString()); raw != "" {
			path = path + "?" + raw
		}

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		event := logger.Log.Info()
		if status >= fiber.StatusInternalServerError {
			event = logger.Log.Error().Err(err)
		}
		event.
			Str("method", c.Method()).
			Str("path", path).
			Str("ip", c.IP()).
			Str("user-agent", c.Get(fiber.HeaderUserAgent)).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("Request processed")

		return err
	}
}
