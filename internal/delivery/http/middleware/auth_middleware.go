package middleware

import (
	"github.com/ferdian3456/rosterbridge/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	Log    *zap.Logger
	Config *koanf.Koanf
}

func NewAuthMiddleware(zap *zap.Logger, koanf *koanf.Koanf) *AuthMiddleware {
	return &AuthMiddleware{
		Log:    zap,
		Config: koanf,
	}
}

// ProtectedRoute stores the platform user id from the bearer token under the "userId" local.
func (middleware *AuthMiddleware) ProtectedRoute() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userId, err := util.ValidateAccessToken(ctx.Get(fiber.HeaderAuthorization), middleware.Config.String("JWT_SECRET_KEY"))
		if err != nil {
			return util.SendAppError(ctx, middleware.Log, err)
		}

		ctx.Locals("userId", userId)

		return ctx.Next()
	}
}
