package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/remake/database"
	"go.uber.org/zap"
)

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := database.Ping(h.db); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
