package http

import (
	"context"
	"errors"

	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/ferdian3456/rosterbridge/internal/usecase"
	"github.com/ferdian3456/rosterbridge/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type MemberController struct {
	PromotionUsecase *usecase.PromotionUsecase
	LifecycleUsecase *usecase.LifecycleUsecase
	HistoryUsecase   *usecase.HistoryUsecase
	Log              *zap.Logger
	Config           *koanf.Koanf
}

func NewMemberController(promotionUsecase *usecase.PromotionUsecase, lifecycleUsecase *usecase.LifecycleUsecase, historyUsecase *usecase.HistoryUsecase, zap *zap.Logger, koanf *koanf.Koanf) *MemberController {
	return &MemberController{
		PromotionUsecase: promotionUsecase,
		LifecycleUsecase: lifecycleUsecase,
		HistoryUsecase:   historyUsecase,
		Log:              zap,
		Config:           koanf,
	}
}

func (controller MemberController) Promote(ctx *fiber.Ctx) error {
	return controller.changeRank(ctx, controller.PromotionUsecase.Promote)
}

func (controller MemberController) Demote(ctx *fiber.Ctx) error {
	return controller.changeRank(ctx, controller.PromotionUsecase.Demote)
}

type rankChange func(ctx context.Context, actorUserId string, memberId uuid.UUID, request model.PromotionRequest) (model.PromotionResult, error)

func (controller MemberController) changeRank(ctx *fiber.Ctx, change rankChange) error {
	userId := ctx.Locals("userId").(string)

	memberId, err := util.ParseUUIDParam(ctx, "memberId")
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	var payload model.PromotionRequest
	err = util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendAppError(ctx, controller.Log, util.InvalidRequestBody())
	}

	response, err := change(ctx.UserContext(), userId, memberId, payload)
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) && response.HistoryId != uuid.Nil {
			// the attempt is already audited, hand the history id back with the error
			return ctx.Status(util.StatusForCode(appErr.Code)).JSON(fiber.Map{
				"error": appErr,
				"data":  response,
			})
		}

		return util.SendAppError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller MemberController) UpdateStatus(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(string)

	memberId, err := util.ParseUUIDParam(ctx, "memberId")
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	var payload model.MemberStatusUpdateRequest
	err = util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendAppError(ctx, controller.Log, util.InvalidRequestBody())
	}

	response, err := controller.LifecycleUsecase.UpdateStatus(ctx.UserContext(), userId, memberId, payload)
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller MemberController) Remove(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(string)

	memberId, err := util.ParseUUIDParam(ctx, "memberId")
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	hard := ctx.QueryBool("hard", false)

	response, err := controller.LifecycleUsecase.RemoveMember(ctx.UserContext(), userId, memberId, hard)
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller MemberController) GetHistory(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(string)

	memberId, err := util.ParseUUIDParam(ctx, "memberId")
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	response, err := controller.HistoryUsecase.ListForMember(ctx.UserContext(), userId, memberId)
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}
