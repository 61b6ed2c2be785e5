package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RouteLogger logs each request on entry and exit. It runs after Tracing and
// Session, so lines carry the trace id and, when signed in, the account.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		logger := zerolog.Ctx(c.UserContext())
		start := time.Now()
		logger.Debug().Str("method", c.Method()).Str("path", c.Path()).Msg("Entering request")

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		ev := logger.Info()
		if status >= fiber.StatusInternalServerError {
			ev = logger.Warn()
		}
		if id := AccountID(c); id != "" {
			ev = ev.Str("account_id", id)
		}
		ev.Str("method", c.Method()).Str("path", c.Path()).Int("status", status).
			Int64("ms", time.Since(start).Milliseconds()).Msg("Exiting request")
		return err
	}
}
