package middleware

import (
	"time"

	"ecobites-be/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestID tags every request with an id carried on the user context
// so repository and service logs correlate.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("X-Request-ID", reqID)
		c.SetUserContext(logger.WithRequestID(c.UserContext(), reqID))
		return c.Next()
	}
}

// Logging logs every HTTP request in structured JSON.
func Logging() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		logger.FromCtx(c.UserContext()).Info("HTTP Request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.String("duration", time.Since(start).String()),
			zap.String("remoteIP", c.IP()),
		)

		return err
	}
}
