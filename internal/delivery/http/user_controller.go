package http

import (
	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/ferdian3456/rosterbridge/internal/usecase"
	"github.com/ferdian3456/rosterbridge/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type UserController struct {
	ReconcileUsecase *usecase.ReconcileUsecase
	Log              *zap.Logger
	Config           *koanf.Koanf
}

func NewUserController(reconcileUsecase *usecase.ReconcileUsecase, zap *zap.Logger, koanf *koanf.Koanf) *UserController {
	return &UserController{
		ReconcileUsecase: reconcileUsecase,
		Log:              zap,
		Config:           koanf,
	}
}

// SyncSelf reconciles the caller's own rank and team, optionally limited to one department.
func (controller UserController) SyncSelf(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(string)

	var payload model.SyncRequest
	if len(ctx.Body()) > 0 {
		err := util.ReadRequestBody(ctx, &payload)
		if err != nil {
			return util.SendAppError(ctx, controller.Log, util.InvalidRequestBody())
		}
	}

	var departmentId *uuid.UUID
	if payload.DepartmentId != nil {
		id, err := uuid.Parse(*payload.DepartmentId)
		if err != nil {
			return util.SendAppError(ctx, controller.Log, &model.AppError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Invalid departmentId",
				Param:   "departmentId",
			})
		}
		departmentId = &id
	}

	response := model.MemberSyncResponse{
		Rank: controller.ReconcileUsecase.SyncRank(ctx.UserContext(), userId, departmentId),
		Team: controller.ReconcileUsecase.SyncTeam(ctx.UserContext(), userId, departmentId),
	}

	return util.SendSuccessResponseWithData(ctx, response)
}
