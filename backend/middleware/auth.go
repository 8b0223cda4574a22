package middleware

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ellavondegurechaff/gohye-progression/backend/utils"
)

const APIKeyHeader = "X-API-Key"

// APIKeyRequired rejects requests without the shared key. The game frontends
// are the only callers; an empty key disables the check.
func APIKeyRequired(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}
		if subtle.ConstantTimeCompare([]byte(c.Get(APIKeyHeader)), []byte(key)) != 1 {
			slog.Warn("Rejected request without valid API key",
				slog.String("type", "http"),
				slog.String("path", c.Path()),
				slog.String("ip", utils.GetIPAddress(c)))
			return utils.SendUnauthorized(c, "A valid API key is required")
		}
		return c.Next()
	}
}
