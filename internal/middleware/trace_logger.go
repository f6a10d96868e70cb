package middleware

import (
	"time"

	"github.com/ferdian3456/rosterbridge/internal/observability"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TraceLoggerMiddleware stores a trace-correlated logger under the "logger" local and writes one
// access log line per request. Must run after otelfiber so the span is in the user context.
func TraceLoggerMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		traceLogger := observability.WithContext(c.UserContext(), logger)
		c.Locals("logger", traceLogger)

		err := c.Next()

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}
		if userId, ok := c.Locals("userId").(string); ok {
			fields = append(fields, zap.String("user_id", userId))
		}

		status := c.Response().StatusCode()
		switch {
		case status >= fiber.StatusInternalServerError:
			traceLogger.Error("request completed", fields...)
		case status >= fiber.StatusBadRequest:
			traceLogger.Info("request completed", fields...)
		default:
			traceLogger.Debug("request completed", fields...)
		}

		return err
	}
}
