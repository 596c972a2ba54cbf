package health

import (
	healthsvc "bondbook-backend/internal/application/health"
	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const serviceName = "bondbook-api"

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Rdb            *redis.Client
	DB             healthsvc.DBPinger
	HealthAdminKey string
}

// JSON returns service status, runtime, traffic and dependency checks.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	r := healthsvc.Collect(c.UserContext(), h.Rdb, h.DB)
	code := fiber.StatusOK
	if r.Status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"service":      serviceName,
		"status":       r.Status,
		"runtime":      r.Runtime,
		"traffic":      r.Traffic,
		"dependencies": r.Dependencies,
	})
}

// Errors returns the last 50 5xx entries.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	entries, err := healthsvc.RecentErrors(c.UserContext(), h.Rdb)
	if err != nil {
		log.Warn().Err(err).Msg("read health error log")
		return c.Status(fiber.StatusInternalServerError).JSON([]interface{}{})
	}
	return c.JSON(entries)
}

// Reset clears health stats. Requires ?key= matching HEALTH_ADMIN_KEY.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" || key != h.HealthAdminKey {
		return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
	}
	if err := healthsvc.Reset(c.UserContext(), h.Rdb); err != nil {
		log.Error().Err(err).Msg("reset health stats")
		return response.Error(c, response.InternalMessage, fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}
