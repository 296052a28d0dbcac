package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-web/pkg/logger"
)

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.db.PingContext(c.UserContext()); err != nil {
		logger.ErrorLogger.Error("Health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
