package http

import (
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/ferdian3456/rosterbridge/internal/usecase"
	"github.com/ferdian3456/rosterbridge/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type PlatformController struct {
	MemberUpdateUsecase *usecase.MemberUpdateUsecase
	Log                 *zap.Logger
	Config              *koanf.Koanf
}

func NewPlatformController(memberUpdateUsecase *usecase.MemberUpdateUsecase, zap *zap.Logger, koanf *koanf.Koanf) *PlatformController {
	return &PlatformController{
		MemberUpdateUsecase: memberUpdateUsecase,
		Log:                 zap,
		Config:              koanf,
	}
}

func (controller PlatformController) MemberUpdated(ctx *fiber.Ctx) error {
	var payload model.MemberUpdateEvent
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendAppError(ctx, controller.Log, util.InvalidRequestBody())
	}

	response, err := controller.MemberUpdateUsecase.HandleMemberUpdate(ctx.UserContext(), payload.UserId)
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	if response.Skipped {
		return ctx.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": response})
	}

	return util.SendSuccessResponseWithData(ctx, response)
}
