package middleware

import (
	"strings"

	"smartagri/models"

	"github.com/gofiber/fiber/v2"
)

// BearerToken returns the token from an "Authorization: Bearer <token>"
// header, or "" when the header is missing or malformed.
func BearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// BearerRequired rejects requests without a non-empty bearer token. The token
// is not verified; the demo token is an opaque flag.
func BearerRequired(c *fiber.Ctx) error {
	token := BearerToken(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(models.Fail(fiber.StatusUnauthorized, "Unauthorized"))
	}

	c.Locals("token", token)
	return c.Next()
}
