package usecase

import (
	"context"
	"fmt"

	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CapacityUsecase computes rank headcount limits. Checks are not transactional: two concurrent
// promotions into the same limited rank can both pass Validate.
type CapacityUsecase struct {
	DepartmentStore DepartmentStore
	MemberStore     MemberStore
	Log             *zap.Logger
}

func NewCapacityUsecase(departmentStore DepartmentStore, memberStore MemberStore, zap *zap.Logger) *CapacityUsecase {
	return &CapacityUsecase{
		DepartmentStore: departmentStore,
		MemberStore:     memberStore,
		Log:             zap,
	}
}

// EffectiveLimit returns the team override when one exists, else the rank's department limit.
// Nil means unlimited.
func (usecase *CapacityUsecase) EffectiveLimit(ctx context.Context, rankId uuid.UUID, teamId *uuid.UUID) (*int, error) {
	rank, err := usecase.DepartmentStore.GetRank(ctx, rankId)
	if err != nil {
		return nil, err
	}

	limit, _, err := usecase.effectiveLimit(ctx, rank, teamId)
	return limit, err
}

func (usecase *CapacityUsecase) CurrentCount(ctx context.Context, rankId uuid.UUID, teamId *uuid.UUID) (int, error) {
	rank, err := usecase.DepartmentStore.GetRank(ctx, rankId)
	if err != nil {
		return 0, err
	}

	_, teamScoped, err := usecase.effectiveLimit(ctx, rank, teamId)
	if err != nil {
		return 0, err
	}

	return usecase.count(ctx, rank.Id, teamId, teamScoped)
}

func (usecase *CapacityUsecase) Validate(ctx context.Context, rankId uuid.UUID, departmentId uuid.UUID, teamId *uuid.UUID) (model.CapacityCheck, error) {
	check := model.CapacityCheck{}

	rank, err := usecase.DepartmentStore.GetRank(ctx, rankId)
	if err != nil {
		return check, err
	}

	if rank.DepartmentId != departmentId {
		return check, &model.AppError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Rank not found in this department",
			Param:   "rankId",
		}
	}

	limit, teamScoped, err := usecase.effectiveLimit(ctx, rank, teamId)
	if err != nil {
		return check, err
	}

	current, err := usecase.count(ctx, rank.Id, teamId, teamScoped)
	if err != nil {
		return check, err
	}

	check.DepartmentLimit = rank.MaxMembers
	check.CurrentCount = current
	if teamScoped {
		check.TeamLimit = limit
	}

	if limit == nil {
		check.CanPromote = true
		check.Reason = fmt.Sprintf("Rank %q has no capacity limit", rank.Name)
		return check, nil
	}

	scope := "department"
	if teamScoped {
		scope = "team"
	}

	if current >= *limit {
		check.CanPromote = false
		check.Reason = fmt.Sprintf("Rank %q is at %s capacity (%d/%d)", rank.Name, scope, current, *limit)
		return check, nil
	}

	check.CanPromote = true
	check.Reason = fmt.Sprintf("Rank %q has %d of %d %s slots filled", rank.Name, current, *limit, scope)

	return check, nil
}

func (usecase *CapacityUsecase) Info(ctx context.Context, departmentId uuid.UUID, teamId *uuid.UUID) ([]model.RankCapacityInfo, error) {
	_, err := usecase.DepartmentStore.GetDepartment(ctx, departmentId)
	if err != nil {
		return nil, err
	}

	overrides := map[uuid.UUID]int{}
	if teamId != nil {
		team, err := usecase.DepartmentStore.GetTeam(ctx, *teamId)
		if err != nil {
			return nil, err
		}

		if team.DepartmentId != departmentId {
			return nil, &model.AppError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Team not found in this department",
				Param:   "teamId",
			}
		}

		overrides, err = usecase.DepartmentStore.ListTeamRankLimits(ctx, *teamId)
		if err != nil {
			return nil, err
		}
	}

	ranks, err := usecase.DepartmentStore.ListActiveRanks(ctx, departmentId)
	if err != nil {
		return nil, err
	}

	infos := make([]model.RankCapacityInfo, 0, len(ranks))
	for _, rank := range ranks {
		limit := rank.MaxMembers
		override, teamScoped := overrides[rank.Id]
		if teamScoped {
			limit = &override
		}

		current, err := usecase.count(ctx, rank.Id, teamId, teamScoped)
		if err != nil {
			return nil, err
		}

		info := model.RankCapacityInfo{
			RankId:       rank.Id,
			RankName:     rank.Name,
			Level:        rank.Level,
			Limit:        limit,
			CurrentCount: current,
		}

		if limit != nil {
			available := *limit - current
			if available < 0 {
				available = 0
			}
			info.AvailableSlots = &available
			info.AtCapacity = current >= *limit
		}

		infos = append(infos, info)
	}

	return infos, nil
}

func (usecase *CapacityUsecase) effectiveLimit(ctx context.Context, rank model.Rank, teamId *uuid.UUID) (*int, bool, error) {
	if teamId != nil {
		override, err := usecase.DepartmentStore.GetTeamRankLimit(ctx, *teamId, rank.Id)
		if err != nil {
			return nil, false, err
		}

		if override != nil {
			return override, true, nil
		}
	}

	return rank.MaxMembers, false, nil
}

func (usecase *CapacityUsecase) count(ctx context.Context, rankId uuid.UUID, teamId *uuid.UUID, teamScoped bool) (int, error) {
	if teamScoped && teamId != nil {
		return usecase.MemberStore.CountActiveByRankInTeam(ctx, rankId, *teamId)
	}

	return usecase.MemberStore.CountActiveByRank(ctx, rankId)
}
