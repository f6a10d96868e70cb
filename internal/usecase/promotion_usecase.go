package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/ferdian3456/rosterbridge/internal/observability"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxReasonLength = 500

type direction int

const (
	directionPromote direction = iota
	directionDemote
)

func (d direction) String() string {
	if d == directionDemote {
		return "demote"
	}
	return "promote"
}

// PromotionUsecase moves a member between ranks: authorize, check direction and capacity, write the
// audit row, mutate platform roles, wait for propagation and read the result back.
type PromotionUsecase struct {
	DepartmentStore DepartmentStore
	MemberStore     MemberStore
	PromotionStore  PromotionStore
	RoleBridge      RoleBridge
	Capacity        *CapacityUsecase
	Reconciler      *ReconcileUsecase
	Authorizer      *Authorizer
	Barrier         Barrier
	Log             *zap.Logger
}

func NewPromotionUsecase(
	departmentStore DepartmentStore,
	memberStore MemberStore,
	promotionStore PromotionStore,
	roleBridge RoleBridge,
	capacity *CapacityUsecase,
	reconciler *ReconcileUsecase,
	authorizer *Authorizer,
	barrier Barrier,
	zap *zap.Logger,
) *PromotionUsecase {
	return &PromotionUsecase{
		DepartmentStore: departmentStore,
		MemberStore:     memberStore,
		PromotionStore:  promotionStore,
		RoleBridge:      roleBridge,
		Capacity:        capacity,
		Reconciler:      reconciler,
		Authorizer:      authorizer,
		Barrier:         barrier,
		Log:             zap,
	}
}

func (usecase *PromotionUsecase) Promote(ctx context.Context, actorUserId string, memberId uuid.UUID, request model.PromotionRequest) (model.PromotionResult, error) {
	return usecase.changeRank(ctx, directionPromote, actorUserId, memberId, request)
}

func (usecase *PromotionUsecase) Demote(ctx context.Context, actorUserId string, memberId uuid.UUID, request model.PromotionRequest) (model.PromotionResult, error) {
	return usecase.changeRank(ctx, directionDemote, actorUserId, memberId, request)
}

// changeRank returns an error for every rejected or failed attempt. When the failure happens after
// the audit write the result still carries the history id.
func (usecase *PromotionUsecase) changeRank(ctx context.Context, dir direction, actorUserId string, memberId uuid.UUID, request model.PromotionRequest) (model.PromotionResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "promotion."+dir.String())
	defer span.End()
	span.SetAttributes(
		attribute.String("member.id", memberId.String()),
		attribute.String("actor.user_id", actorUserId),
	)

	result := model.PromotionResult{MemberId: memberId}

	targetRankId, reason, err := validatePromotionRequest(dir, request)
	if err != nil {
		return result, err
	}
	result.ToRankId = targetRankId

	member, err := usecase.MemberStore.GetMember(ctx, memberId)
	if err != nil {
		return result, err
	}
	result.FromRankId = member.RankId

	// authorization
	if member.UserId == actorUserId {
		return result, &model.AppError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "You cannot change your own rank",
			Param:   "memberId",
		}
	}

	var actor Actor
	var currentRank *model.Rank

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		actor, err = usecase.Authorizer.ResolveActor(groupCtx, actorUserId, member.DepartmentId)
		return err
	})
	group.Go(func() error {
		if member.RankId == nil {
			return nil
		}
		rank, err := usecase.DepartmentStore.GetRank(groupCtx, *member.RankId)
		if err != nil {
			return err
		}
		currentRank = &rank
		return nil
	})

	err = group.Wait()
	if err != nil {
		return result, err
	}

	capability := model.CapabilityPromoteMembers
	if dir == directionDemote {
		capability = model.CapabilityDemoteMembers
	}

	err = actor.Require(capability)
	if err != nil {
		return result, err
	}

	currentLevel := 0
	if currentRank != nil {
		currentLevel = currentRank.Level
	}

	err = actor.Outranks(currentLevel)
	if err != nil {
		return result, err
	}

	// removal statuses keep no platform roles, reactivation restores the stored rank
	if !member.HoldsRoles() {
		return result, &model.AppError{
			Code:    constant.ERR_CONFLICT_ERROR,
			Message: fmt.Sprintf("Member is not active in this department (status %s)", member.Status),
			Param:   "memberId",
		}
	}

	targetRank, err := usecase.DepartmentStore.GetRank(ctx, targetRankId)
	if err != nil {
		return result, err
	}

	if targetRank.DepartmentId != member.DepartmentId || !targetRank.IsActive {
		return result, &model.AppError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Target rank not found in this department",
			Param:   "targetRankId",
		}
	}

	// direction
	if dir == directionPromote && targetRank.Level <= currentLevel {
		return result, &model.AppError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Target rank must be higher than the current rank. Use demote to lower a member's rank",
			Param:   "targetRankId",
		}
	}
	if dir == directionDemote && targetRank.Level >= currentLevel {
		return result, &model.AppError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Target rank must be lower than the current rank. Use promote to raise a member's rank",
			Param:   "targetRankId",
		}
	}

	// capacity
	if dir == directionPromote {
		check, err := usecase.Capacity.Validate(ctx, targetRank.Id, member.DepartmentId, member.PrimaryTeamId)
		if err != nil {
			return result, err
		}

		if !check.CanPromote {
			return result, &model.AppError{
				Code:    constant.ERR_CONFLICT_ERROR,
				Message: check.Reason,
				Param:   "targetRankId",
			}
		}
	}

	// audit
	entry := model.PromotionHistory{
		Id:             uuid.New(),
		MemberId:       &member.Id,
		DepartmentId:   member.DepartmentId,
		UserId:         member.UserId,
		FromRankId:     member.RankId,
		ToRankId:       &targetRank.Id,
		ActorUserId:    actorUserId,
		Reason:         reason,
		CreateDatetime: time.Now().UTC(),
	}

	err = usecase.PromotionStore.CreatePromotionHistory(ctx, entry)
	if err != nil {
		return result, err
	}
	result.HistoryId = entry.Id

	// The remaining steps complete even if the caller goes away.
	detached := context.WithoutCancel(ctx)

	guildId, err := usecase.resolveGuild(detached, member.DepartmentId, currentRank, targetRank)
	if err != nil {
		usecase.Log.Error("rank change aborted after audit write",
			zap.String("member_id", member.Id.String()),
			zap.String("history_id", entry.Id.String()),
			zap.Error(err),
		)
		result.Message = "Rank was not changed, the attempt is recorded in history"
		return result, err
	}

	if currentRank != nil && currentRank.RoleId != nil {
		result.RoleRemoved = usecase.RoleBridge.RemoveRole(detached, member.UserId, *currentRank.RoleId, guildId)
	}
	if targetRank.RoleId != nil {
		result.RoleAdded = usecase.RoleBridge.AddRole(detached, member.UserId, *targetRank.RoleId, guildId)
	}

	if (currentRank != nil && currentRank.RoleId != nil && !result.RoleRemoved) || (targetRank.RoleId != nil && !result.RoleAdded) {
		usecase.Log.Warn("platform role mutation reported failure, relying on reconciliation",
			zap.String("member_id", member.Id.String()),
			zap.Bool("role_removed", result.RoleRemoved),
			zap.Bool("role_added", result.RoleAdded),
		)
	}

	usecase.Barrier.Wait()

	result.Sync = usecase.Reconciler.SyncRank(detached, member.UserId, &member.DepartmentId)
	result.Success = true

	if !result.Sync.Success {
		usecase.Log.Warn("rank change recorded but reconciliation failed, stored rank may be stale",
			zap.String("member_id", member.Id.String()),
			zap.String("history_id", entry.Id.String()),
			zap.String("sync_message", result.Sync.Message),
		)
		result.Message = fmt.Sprintf("Rank change to %s recorded, but the platform could not be read back. Stored rank may be stale", targetRank.Name)
		return result, nil
	}

	result.Message = fmt.Sprintf("Rank change to %s applied", targetRank.Name)
	if !syncReached(result.Sync, member, targetRank.Id) {
		result.Message = fmt.Sprintf("Rank change to %s recorded, but platform roles do not reflect it yet", targetRank.Name)
	}

	usecase.Log.Info("rank change completed",
		zap.String("direction", dir.String()),
		zap.String("member_id", member.Id.String()),
		zap.String("actor_user_id", actorUserId),
		zap.String("to_rank_id", targetRank.Id.String()),
		zap.Int("deltas", len(result.Sync.Deltas)),
	)

	return result, nil
}

// resolveGuild uses the department guild, falling back to the guild owning one of the rank roles.
// An unknown guild is a hard failure.
func (usecase *PromotionUsecase) resolveGuild(ctx context.Context, departmentId uuid.UUID, currentRank *model.Rank, targetRank model.Rank) (string, error) {
	department, err := usecase.DepartmentStore.GetDepartment(ctx, departmentId)
	if err != nil {
		return "", err
	}

	if department.GuildId != nil && *department.GuildId != "" {
		return *department.GuildId, nil
	}

	candidates := []*string{targetRank.RoleId}
	if currentRank != nil {
		candidates = append(candidates, currentRank.RoleId)
	}

	for _, roleId := range candidates {
		if roleId == nil {
			continue
		}
		guildId, ok := usecase.RoleBridge.ResolveGuildId(ctx, *roleId)
		if ok {
			return guildId, nil
		}
	}

	return "", &model.AppError{
		Code:    constant.ERR_PLATFORM_UPDATE_FAILED,
		Message: "No platform guild is configured for this department. Rank was not changed",
		Param:   "departmentId",
	}
}

func validatePromotionRequest(dir direction, request model.PromotionRequest) (uuid.UUID, *string, error) {
	targetRankId, err := uuid.Parse(request.TargetRankId)
	if err != nil {
		return uuid.Nil, nil, &model.AppError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid target rank id",
			Param:   "targetRankId",
		}
	}

	var reason *string
	if request.Reason != nil {
		trimmed := strings.TrimSpace(*request.Reason)
		if trimmed != "" {
			reason = &trimmed
		}
	}

	if dir == directionDemote && reason == nil {
		return uuid.Nil, nil, &model.AppError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Reason is required for a demotion",
			Param:   "reason",
		}
	}

	if reason != nil && utf8.RuneCountInString(*reason) > maxReasonLength {
		return uuid.Nil, nil, &model.AppError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Reason must be at most %d characters", maxReasonLength),
			Param:   "reason",
		}
	}

	return targetRankId, reason, nil
}

func syncReached(sync model.RankSyncResult, member model.Member, targetRankId uuid.UUID) bool {
	for _, delta := range sync.Deltas {
		if delta.DepartmentId == member.DepartmentId {
			return delta.NewRankId != nil && *delta.NewRankId == targetRankId
		}
	}

	// no delta means the stored rank already matched the platform
	return member.RankId != nil && *member.RankId == targetRankId
}
