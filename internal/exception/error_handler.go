package exception

import (
	"errors"
	"fmt"

	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func Recovery(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			var errMsg string
			switch v := r.(type) {
			case error:
				errMsg = v.Error()
			case string:
				errMsg = v
			default:
				errMsg = fmt.Sprintf("%v", v)
			}

			middleware.GetLoggerFromContext(c, log).Error("panic occurred and recovered",
				zap.String("error", errMsg),
				zap.String("path", c.Path()),
			)

			_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    constant.ERR_INTERNAL_SERVER_ERROR_CODE,
					"message": constant.ERR_INTENRAL_SERVER_ERROR_MESSAGE,
				},
			})
		}()

		return c.Next()
	}
}

// ErrorHandler renders errors that escape handlers, such as unknown routes or oversized bodies,
// in the same envelope as handler errors.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code := constant.ERR_VALIDATION_CODE
			switch fiberErr.Code {
			case fiber.StatusNotFound:
				code = constant.ERR_NOT_FOUND_ERROR
			case fiber.StatusUnauthorized:
				code = constant.ERR_UNATHORIZED_ERROR
			case fiber.StatusForbidden:
				code = constant.ERR_FORBIDDEN_ERROR
			case fiber.StatusTooManyRequests:
				code = constant.ERR_RATE_LIMITED
			}
			if fiberErr.Code >= fiber.StatusInternalServerError {
				code = constant.ERR_INTERNAL_SERVER_ERROR_CODE
			}

			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    code,
					"message": fiberErr.Message,
				},
			})
		}

		middleware.GetLoggerFromContext(c, log).Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    constant.ERR_INTERNAL_SERVER_ERROR_CODE,
				"message": constant.ERR_INTENRAL_SERVER_ERROR_MESSAGE,
			},
		})
	}
}
