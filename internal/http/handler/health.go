package handler

import "github.com/gofiber/fiber/v2"

// ServiceName is reported by the health endpoint.
const ServiceName = "JODReports Playground"

// Health reports the service as up. It checks no dependencies.
//
//	@Summary	Health check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/api/health [get]
func Health() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "UP", "service": ServiceName})
	}
}

// LivenessProbe is a simple liveness probe for orchestrators.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
