package util

import (
	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ParseUUIDParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, &model.AppError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid " + name,
			Param:   name,
		}
	}

	return id, nil
}

// ParseOptionalUUIDQuery returns nil when the query parameter is absent.
func ParseOptionalUUIDQuery(ctx *fiber.Ctx, name string) (*uuid.UUID, error) {
	value := ctx.Query(name)
	if value == "" {
		return nil, nil
	}

	id, err := uuid.Parse(value)
	if err != nil {
		return nil, &model.AppError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid " + name,
			Param:   name,
		}
	}

	return &id, nil
}

func InvalidRequestBody() error {
	return &model.AppError{
		Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
		Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
	}
}
