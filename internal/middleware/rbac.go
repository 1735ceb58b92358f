package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/cloudlab-api/internal/utils"
)

// RequireAdmin ensures that the authenticated caller holds the admin capability.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if !identity.IsAdmin() {
			return utils.SendError(c, fiber.StatusForbidden, "Forbidden: admin access only")
		}
		return c.Next()
	}
}
