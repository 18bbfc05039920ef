package handlers

import (
	"time"

	"ecobites-be/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Health handles GET /api/health.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now(),
		"orders": fiber.Map{
			"placed":     metrics.Orders.Placed.Load(),
			"rejected":   metrics.Orders.Rejected.Load(),
			"rolledBack": metrics.Orders.RolledBack.Load(),
		},
	})
}
