package usecase

import (
	"context"
	"strings"

	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/debounce"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"go.uber.org/zap"
)

// MemberUpdateUsecase reconciles a user after the platform reports a role change. Bursts for the
// same user are dropped while one is in flight or cooling down.
type MemberUpdateUsecase struct {
	Reconciler *ReconcileUsecase
	Guard      debounce.Guard
	Log        *zap.Logger
}

func NewMemberUpdateUsecase(reconciler *ReconcileUsecase, guard debounce.Guard, zap *zap.Logger) *MemberUpdateUsecase {
	return &MemberUpdateUsecase{
		Reconciler: reconciler,
		Guard:      guard,
		Log:        zap,
	}
}

func (usecase *MemberUpdateUsecase) HandleMemberUpdate(ctx context.Context, userId string) (model.MemberUpdateResult, error) {
	userId = strings.TrimSpace(userId)
	result := model.MemberUpdateResult{UserId: userId}

	if userId == "" {
		return result, &model.AppError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "User id is required",
			Param:   "userId",
		}
	}

	acquired, err := usecase.Guard.Acquire(ctx, userId)
	if err != nil {
		// fail open, a duplicate sync is harmless
		usecase.Log.Warn("debounce guard unavailable, processing update", zap.String("user_id", userId), zap.Error(err))
		acquired = true
	}

	if !acquired {
		usecase.Log.Debug("member update skipped", zap.String("user_id", userId))
		result.Skipped = true
		return result, nil
	}

	defer func() {
		err := usecase.Guard.Release(context.WithoutCancel(ctx), userId)
		if err != nil {
			usecase.Log.Warn("failed to release debounce guard", zap.String("user_id", userId), zap.Error(err))
		}
	}()

	rank := usecase.Reconciler.SyncRank(ctx, userId, nil)
	team := usecase.Reconciler.SyncTeam(ctx, userId, nil)

	result.Rank = &rank
	result.Team = &team

	return result, nil
}
