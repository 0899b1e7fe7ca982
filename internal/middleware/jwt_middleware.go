package middleware

import (
	"log"
	"strings"

	"kelas/internal/services"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header format must be 'Bearer <token>'",
			})
		}

		identity, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// Store the caller in Fiber context for subsequent handlers
		c.Locals(identityKey, identity)
		c.Locals("user_id", identity.UserID)
		c.Locals("username", identity.Username)

		return c.Next()
	}
}

// AdminOnly rejects callers without the admin role. It must run after AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		if !identity.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin role required",
			})
		}
		return c.Next()
	}
}

// IdentityFrom returns the caller stored by AuthRequired.
func IdentityFrom(c *fiber.Ctx) (services.Identity, bool) {
	identity, ok := c.Locals(identityKey).(services.Identity)
	return identity, ok && identity.UserID != ""
}

// UserID returns the id of the authenticated caller, or "".
func UserID(c *fiber.Ctx) string {
	identity, _ := IdentityFrom(c)
	return identity.UserID
}
