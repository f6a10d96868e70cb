package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

// SetupRateLimiter limits callers by user id once authenticated, by IP otherwise.
func SetupRateLimiter(logger *zap.Logger) fiber.Handler {
	return limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			// Skip rate limiting for health check endpoint
			return c.Path() == "/api/health"
		},
		Max:        100,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userId, ok := c.Locals("userId").(string); ok && userId != "" {
				return "user:" + userId
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logger.Warn("Rate limit exceeded", zap.String("ip", c.IP()))
			return fiber.NewError(fiber.StatusTooManyRequests, "Rate limit exceeded, please try again later")
		},
	})
}

// SetupPromotionRateLimiter is stricter, each promotion holds a request open through the
// propagation wait.
func SetupPromotionRateLimiter(logger *zap.Logger) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userId, ok := c.Locals("userId").(string); ok && userId != "" {
				return "promotion:" + userId
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logger.Warn("Promotion rate limit exceeded", zap.String("ip", c.IP()))
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many rank changes, please try again later")
		},
	})
}
