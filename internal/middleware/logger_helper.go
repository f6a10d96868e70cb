package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GetLoggerFromContext returns the trace-aware logger set by TraceLoggerMiddleware, or fallback.
func GetLoggerFromContext(c *fiber.Ctx, fallback *zap.Logger) *zap.Logger {
	if logger, ok := c.Locals("logger").(*zap.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}
