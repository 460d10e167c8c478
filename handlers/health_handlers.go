package handlers

import (
	"smartagri/models"

	"github.com/gofiber/fiber/v2"
)

// HandleHealth reports liveness and the configured upstream. It does not call the upstream.
// GET /health
func HandleHealth(upstream string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(models.HealthResponse{
			Status:         "ok",
			Backend:        true,
			Upstream:       upstream,
			LSTMPrediction: upstream,
		})
	}
}

// HandleInfo describes the gateway.
// GET /
func HandleInfo(port int, upstream string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(models.InfoResponse{
			Message:  "SmartAgri Gateway -> prediction service",
			Port:     port,
			Upstream: upstream,
		})
	}
}

// HandleNotFound is the catch-all for unmatched routes.
func HandleNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found"})
}
