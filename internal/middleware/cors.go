package middleware

import (
	"strings"

	"ledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	corsAllowMethods = "GET, POST, PATCH, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, dev-password, X-Trace-Id"
)

// CORSConfig selects the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedSuffix string
	DevPassword   string
}

// CORS admits requests without an Origin, origins ending in AllowedSuffix,
// local dev origins and callers presenting the dev-password header. Preflights
// from admitted origins are answered here with 204.
func CORS(cfg CORSConfig) fiber.Handler {
	suffix := strings.ToLower(cfg.AllowedSuffix)
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if origin == "" {
			return c.Next()
		}
		allowed := isLocalOrigin(origin) ||
			(suffix != "" && strings.HasSuffix(strings.ToLower(origin), suffix)) ||
			(cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword)
		if !allowed {
			return response.Forbidden(c, "Origin "+origin+" is not allowed")
		}
		c.Set("Access-Control-Allow-Origin", origin)
		c.Set("Access-Control-Allow-Credentials", "true")
		c.Set("Access-Control-Expose-Headers", traceIDHeader)
		c.Vary("Origin")
		if c.Method() == fiber.MethodOptions {
			c.Set("Access-Control-Allow-Methods", corsAllowMethods)
			c.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func isLocalOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")
}
