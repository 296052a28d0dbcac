package middleware

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-web/pkg/logger"
)

// ErrorHandler menangkap panic dan mencatat setiap request beserta status akhirnya.
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				errMsg := fmt.Sprintf("Recovered from panic: %v", r)
				logger.ErrorLogger.Error(errMsg,
					zap.String("method", c.Method()),
					zap.String("url", c.OriginalURL()),
					zap.String("stack", string(debug.Stack())),
				)
				_ = c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
			}
			logRequest(c, start)
		}()

		// Error diteruskan ke error handler aplikasi di sini supaya status yang
		// dicatat sama dengan yang dikirim.
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		return nil
	}
}

func logRequest(c *fiber.Ctx, start time.Time) {
	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("url", c.OriginalURL()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
	}
	if user := CurrentUser(c); user != nil {
		fields = append(fields, zap.Int("user_id", user.ID))
	}
	logger.RequestLogger.Info("Request", fields...)
}

// FiberErrorHandler dipakai sebagai fiber.Config.ErrorHandler.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).SendString(fe.Message)
	}

	logger.ErrorLogger.Error("Unhandled error",
		zap.String("method", c.Method()),
		zap.String("url", c.OriginalURL()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
}
