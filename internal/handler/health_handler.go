package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/realorai/realorai-api/internal/config"
	"github.com/realorai/realorai-api/internal/utils"
)

// HealthCheck reports service liveness.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "ok", fiber.Map{
			"app": cfg.AppName,
			"env": cfg.AppEnv,
		})
	}
}
