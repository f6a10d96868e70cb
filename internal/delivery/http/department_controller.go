package http

import (
	"github.com/ferdian3456/rosterbridge/internal/usecase"
	"github.com/ferdian3456/rosterbridge/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type DepartmentController struct {
	CapacityUsecase  *usecase.CapacityUsecase
	ReconcileUsecase *usecase.ReconcileUsecase
	HistoryUsecase   *usecase.HistoryUsecase
	Log              *zap.Logger
	Config           *koanf.Koanf
}

func NewDepartmentController(capacityUsecase *usecase.CapacityUsecase, reconcileUsecase *usecase.ReconcileUsecase, historyUsecase *usecase.HistoryUsecase, zap *zap.Logger, koanf *koanf.Koanf) *DepartmentController {
	return &DepartmentController{
		CapacityUsecase:  capacityUsecase,
		ReconcileUsecase: reconcileUsecase,
		HistoryUsecase:   historyUsecase,
		Log:              zap,
		Config:           koanf,
	}
}

func (controller DepartmentController) GetCapacity(ctx *fiber.Ctx) error {
	departmentId, err := util.ParseUUIDParam(ctx, "departmentId")
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	teamId, err := util.ParseOptionalUUIDQuery(ctx, "teamId")
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	response, err := controller.CapacityUsecase.Info(ctx.UserContext(), departmentId, teamId)
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller DepartmentController) GetRankCapacity(ctx *fiber.Ctx) error {
	departmentId, err := util.ParseUUIDParam(ctx, "departmentId")
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	rankId, err := util.ParseUUIDParam(ctx, "rankId")
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	teamId, err := util.ParseOptionalUUIDQuery(ctx, "teamId")
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	response, err := controller.CapacityUsecase.Validate(ctx.UserContext(), rankId, departmentId, teamId)
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller DepartmentController) Sync(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(string)

	departmentId, err := util.ParseUUIDParam(ctx, "departmentId")
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	response, err := controller.ReconcileUsecase.SyncDepartment(ctx.UserContext(), userId, departmentId)
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller DepartmentController) ArchiveHistory(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(string)

	departmentId, err := util.ParseUUIDParam(ctx, "departmentId")
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	response, err := controller.HistoryUsecase.Archive(ctx.UserContext(), userId, departmentId)
	if err != nil {
		return util.SendAppError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}
