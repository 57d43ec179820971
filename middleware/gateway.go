// middleware/gateway.go
package middleware

import (
	"crypto/subtle"
	"log"

	"github.com/gofiber/fiber/v2"
)

const (
	ServiceTokenHeader  = "X-Service-Token"
	LocalGatewayTrusted = "gateway_trusted"
)

// GatewayAuthMiddleware marks requests carrying the shared service token as coming
// from the gateway. With required set, every other request is rejected.
// An empty token disables the check.
func GatewayAuthMiddleware(expectedToken string, required bool) fiber.Handler {
	if expectedToken == "" {
		if required {
			log.Fatal("❌ GAME_SERVICE_TOKEN is not set — service cannot authenticate Gateway")
		}
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		token := c.Get(ServiceTokenHeader)
		if token == "" {
			if required {
				log.Printf("🚫 [GATEWAY_AUTH] Missing %s for %s", ServiceTokenHeader, c.Path())
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "gateway authentication token missing",
				})
			}
			return c.Next()
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			log.Printf("❌ [GATEWAY_AUTH] Invalid token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}

		c.Locals(LocalGatewayTrusted, true)
		return c.Next()
	}
}

func gatewayTrusted(c *fiber.Ctx) bool {
	ok, _ := c.Locals(LocalGatewayTrusted).(bool)
	return ok
}
