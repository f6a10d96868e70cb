package util

import (
	"errors"

	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/model"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func ReadRequestBody(ctx *fiber.Ctx, result interface{}) error {
	err := ctx.BodyParser(result)
	if err != nil {
		return err
	}
	return nil
}

func SendSuccessResponseWithData(ctx *fiber.Ctx, data interface{}) error {
	err := ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": data,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponseInternalServer(ctx *fiber.Ctx, log *zap.Logger, error error) error {
	log.Error("internal server error occured", zap.Error(error))
	err := ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    constant.ERR_INTERNAL_SERVER_ERROR_CODE,
			"message": constant.ERR_INTENRAL_SERVER_ERROR_MESSAGE,
		},
	})

	if err != nil {
		return err
	}

	return nil
}

// SendAppError writes an AppError with the status matching its code, anything else becomes a 500.
func SendAppError(ctx *fiber.Ctx, log *zap.Logger, err error) error {
	var appErr *model.AppError
	if !errors.As(err, &appErr) {
		return SendErrorResponseInternalServer(ctx, log, err)
	}

	return sendErrorWithStatus(ctx, StatusForCode(appErr.Code), appErr)
}

func StatusForCode(code string) int {
	switch code {
	case constant.ERR_VALIDATION_CODE, constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE:
		return fiber.StatusBadRequest
	case constant.ERR_UNATHORIZED_ERROR:
		return fiber.StatusUnauthorized
	case constant.ERR_FORBIDDEN_ERROR:
		return fiber.StatusForbidden
	case constant.ERR_NOT_FOUND_ERROR:
		return fiber.StatusNotFound
	case constant.ERR_CONFLICT_ERROR:
		return fiber.StatusConflict
	case constant.ERR_PLATFORM_UPDATE_FAILED:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func sendErrorWithStatus(ctx *fiber.Ctx, status int, error error) error {
	err := ctx.Status(status).JSON(fiber.Map{
		"error": error,
	})
	if err != nil {
		return err
	}

	return nil
}
