package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck pings the database.
//
// @Summary  Readiness probe
// @Tags     health
// @Success  200 {object} map[string]string
// @Failure  503 {object} errorPayload
// @Router   /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
//
// @Summary  Liveness probe
// @Tags     health
// @Success  200
// @Router   /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
