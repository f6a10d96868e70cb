package middleware

import (
	"crypto/subtle"

	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/ferdian3456/rosterbridge/internal/platform"
	"github.com/ferdian3456/rosterbridge/internal/util"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// APIKeyRoute guards machine-to-machine routes with a static key in the X-API-Key header.
// An empty expected key rejects every request.
func APIKeyRoute(expected string, log *zap.Logger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		given := ctx.Get(platform.APIKeyHeader)
		if expected == "" || subtle.ConstantTimeCompare([]byte(given), []byte(expected)) != 1 {
			log.Warn("rejected webhook call", zap.String("ip", ctx.IP()), zap.String("path", ctx.Path()))
			return util.SendAppError(ctx, log, &model.AppError{
				Code:    constant.ERR_UNATHORIZED_ERROR,
				Message: "Invalid API key",
				Param:   platform.APIKeyHeader,
			})
		}

		return ctx.Next()
	}
}
