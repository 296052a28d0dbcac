package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-web/internal/models"
	"todo-web/internal/repository"
	"todo-web/internal/session"
	"todo-web/pkg/logger"
)

const currentUserKey = "currentUser"

// UserLoader memuat user berdasarkan id yang ada di token.
type UserLoader interface {
	UserByID(ctx context.Context, id int) (*models.User, error)
}

// LoadUser membaca token session dan menyimpan user ke locals.
// Token tidak valid atau user yang sudah tidak ada diperlakukan sebagai anonymous.
func LoadUser(sessions *session.Manager, users UserLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := sessions.Resolve(c)
		if err != nil {
			if !errors.Is(err, session.ErrNoToken) {
				logger.SecurityLogger.Warn("Rejected session token",
					zap.String("ip", c.IP()),
					zap.String("url", c.OriginalURL()),
					zap.Error(err),
				)
			}
			logger.ContextLogger.Debug("Anonymous request", zap.String("url", c.OriginalURL()))
			return c.Next()
		}

		user, err := users.UserByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				logger.SecurityLogger.Warn("Session for unknown user", zap.Int("user_id", userID))
				return c.Next()
			}
			return err
		}

		logger.ContextLogger.Debug("Session resolved",
			zap.Int("user_id", user.ID),
			zap.String("url", c.OriginalURL()),
		)
		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// CurrentUser mengembalikan user yang login, atau nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}

// RequireUser menolak request anonymous dengan 401 JSON.
func RequireUser(c *fiber.Ctx) error {
	if CurrentUser(c) == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return c.Next()
}
