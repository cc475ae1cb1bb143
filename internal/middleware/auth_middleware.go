package middleware

import (
	"strings"

	"go-wms/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the bearer token issued by the identity gateway and
// sets the actor and privileges in context. No user store is consulted: the
// claims are the source of truth.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals("actor", claims.Actor)
		c.Locals("privileges", claims.Privileges)

		return c.Next()
	}
}

// RequirePrivilege checks if the authenticated caller has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("privileges").([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, p := range privileges {
			if p == requiredPrivilege {
				return c.Next()
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}
