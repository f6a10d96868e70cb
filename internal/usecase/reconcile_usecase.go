package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/ferdian3456/rosterbridge/internal/observability"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const departmentSyncConcurrency = 4

// ReconcileUsecase rewrites local rank and team fields from the member's live platform roles.
type ReconcileUsecase struct {
	DepartmentStore DepartmentStore
	MemberStore     MemberStore
	RoleBridge      RoleBridge
	Authorizer      *Authorizer
	Log             *zap.Logger
}

func NewReconcileUsecase(departmentStore DepartmentStore, memberStore MemberStore, roleBridge RoleBridge, authorizer *Authorizer, zap *zap.Logger) *ReconcileUsecase {
	return &ReconcileUsecase{
		DepartmentStore: departmentStore,
		MemberStore:     memberStore,
		RoleBridge:      roleBridge,
		Authorizer:      authorizer,
		Log:             zap,
	}
}

// SyncRank sets each membership's rank to the lowest-level rank whose role the user holds in the
// department's guild, or clears it when nothing matches.
func (usecase *ReconcileUsecase) SyncRank(ctx context.Context, userId string, departmentId *uuid.UUID) model.RankSyncResult {
	ctx, span := observability.Tracer().Start(ctx, "reconcile.SyncRank")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userId))

	result := model.RankSyncResult{Deltas: []model.RankDelta{}}

	roles, ok := usecase.RoleBridge.ListRoles(ctx, userId)
	if !ok {
		result.Message = "Could not read platform roles, rank not synchronised"
		return result
	}

	memberships, err := usecase.MemberStore.ListActiveMemberships(ctx, userId, departmentId)
	if err != nil {
		usecase.Log.Error("failed to list memberships for rank sync", zap.String("user_id", userId), zap.Error(err))
		result.Message = "Could not load department memberships, rank not synchronised"
		return result
	}

	if len(memberships) == 0 {
		result.Success = true
		result.Message = "No active department memberships found"
		return result
	}

	result.Success = true
	notes := []string{}

	for _, member := range memberships {
		department, err := usecase.DepartmentStore.GetDepartment(ctx, member.DepartmentId)
		if err != nil {
			usecase.Log.Error("failed to load department for rank sync", zap.String("department_id", member.DepartmentId.String()), zap.Error(err))
			notes = append(notes, fmt.Sprintf("department %s: failed to load department", member.DepartmentId))
			result.Success = false
			continue
		}

		ranks, err := usecase.DepartmentStore.ListActiveRanks(ctx, department.Id)
		if err != nil {
			usecase.Log.Error("failed to list ranks for rank sync", zap.String("department_id", department.Id.String()), zap.Error(err))
			notes = append(notes, fmt.Sprintf("%s: failed to load ranks", department.Name))
			result.Success = false
			continue
		}

		held := heldRoleIds(roles, department.GuildId)

		// ranks arrive ordered by level ascending
		var candidate *model.Rank
		for i := range ranks {
			if ranks[i].RoleId != nil && held[*ranks[i].RoleId] {
				candidate = &ranks[i]
				break
			}
		}

		var newRankId *uuid.UUID
		if candidate != nil {
			newRankId = &candidate.Id
		}

		if model.SameUUID(member.RankId, newRankId) {
			if candidate == nil {
				notes = append(notes, fmt.Sprintf("%s: no matching rank roles found", department.Name))
			}
			continue
		}

		err = usecase.MemberStore.UpdateMemberRank(ctx, member.Id, newRankId)
		if err != nil {
			usecase.Log.Error("failed to update member rank", zap.String("member_id", member.Id.String()), zap.Error(err))
			notes = append(notes, fmt.Sprintf("%s: failed to update rank", department.Name))
			result.Success = false
			continue
		}

		result.Deltas = append(result.Deltas, model.RankDelta{
			DepartmentId: department.Id,
			OldRankId:    member.RankId,
			NewRankId:    newRankId,
		})

		if candidate == nil {
			notes = append(notes, fmt.Sprintf("%s: no matching rank roles found, rank cleared", department.Name))
		} else {
			notes = append(notes, fmt.Sprintf("%s: rank set to %s", department.Name, candidate.Name))
		}
	}

	result.Message = summarize("rank", len(result.Deltas), notes)
	span.SetAttributes(attribute.Int("reconcile.deltas", len(result.Deltas)))

	return result
}

// SyncTeam sets each membership's primary team to the first declared team whose role the user
// holds. Only the old primary team's membership row is removed.
func (usecase *ReconcileUsecase) SyncTeam(ctx context.Context, userId string, departmentId *uuid.UUID) model.TeamSyncResult {
	ctx, span := observability.Tracer().Start(ctx, "reconcile.SyncTeam")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userId))

	result := model.TeamSyncResult{Deltas: []model.TeamDelta{}}

	roles, ok := usecase.RoleBridge.ListRoles(ctx, userId)
	if !ok {
		result.Message = "Could not read platform roles, team not synchronised"
		return result
	}

	memberships, err := usecase.MemberStore.ListActiveMemberships(ctx, userId, departmentId)
	if err != nil {
		usecase.Log.Error("failed to list memberships for team sync", zap.String("user_id", userId), zap.Error(err))
		result.Message = "Could not load department memberships, team not synchronised"
		return result
	}

	if len(memberships) == 0 {
		result.Success = true
		result.Message = "No active department memberships found"
		return result
	}

	result.Success = true
	notes := []string{}

	for _, member := range memberships {
		department, err := usecase.DepartmentStore.GetDepartment(ctx, member.DepartmentId)
		if err != nil {
			usecase.Log.Error("failed to load department for team sync", zap.String("department_id", member.DepartmentId.String()), zap.Error(err))
			notes = append(notes, fmt.Sprintf("department %s: failed to load department", member.DepartmentId))
			result.Success = false
			continue
		}

		teams, err := usecase.DepartmentStore.ListActiveTeams(ctx, department.Id)
		if err != nil {
			usecase.Log.Error("failed to list teams for team sync", zap.String("department_id", department.Id.String()), zap.Error(err))
			notes = append(notes, fmt.Sprintf("%s: failed to load teams", department.Name))
			result.Success = false
			continue
		}

		held := heldRoleIds(roles, department.GuildId)

		var candidate *model.Team
		for i := range teams {
			if teams[i].RoleId != nil && held[*teams[i].RoleId] {
				candidate = &teams[i]
				break
			}
		}

		var newTeamId *uuid.UUID
		if candidate != nil {
			newTeamId = &candidate.Id
		}

		if model.SameUUID(member.PrimaryTeamId, newTeamId) {
			continue
		}

		err = usecase.MemberStore.ReplacePrimaryTeam(ctx, member.Id, member.PrimaryTeamId, newTeamId)
		if err != nil {
			usecase.Log.Error("failed to replace primary team", zap.String("member_id", member.Id.String()), zap.Error(err))
			notes = append(notes, fmt.Sprintf("%s: failed to update team", department.Name))
			result.Success = false
			continue
		}

		result.Deltas = append(result.Deltas, model.TeamDelta{
			DepartmentId: department.Id,
			OldTeamId:    member.PrimaryTeamId,
			NewTeamId:    newTeamId,
		})

		if candidate == nil {
			notes = append(notes, fmt.Sprintf("%s: no matching team roles found, primary team cleared", department.Name))
		} else {
			notes = append(notes, fmt.Sprintf("%s: primary team set to %s", department.Name, candidate.Name))
		}
	}

	result.Message = summarize("team", len(result.Deltas), notes)
	span.SetAttributes(attribute.Int("reconcile.deltas", len(result.Deltas)))

	return result
}

// SyncDepartment reconciles every active member of a department, four members at a time.
func (usecase *ReconcileUsecase) SyncDepartment(ctx context.Context, actorUserId string, departmentId uuid.UUID) (model.DepartmentSyncResponse, error) {
	response := model.DepartmentSyncResponse{DepartmentId: departmentId}

	_, err := usecase.DepartmentStore.GetDepartment(ctx, departmentId)
	if err != nil {
		return response, err
	}

	_, err = usecase.Authorizer.Require(ctx, actorUserId, departmentId, model.CapabilityManageMembers)
	if err != nil {
		return response, err
	}

	ctx, span := observability.Tracer().Start(ctx, "reconcile.SyncDepartment")
	defer span.End()
	span.SetAttributes(attribute.String("department.id", departmentId.String()))

	members, err := usecase.MemberStore.ListActiveDepartmentMembers(ctx, departmentId)
	if err != nil {
		return response, err
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(departmentSyncConcurrency)

	for _, member := range members {
		group.Go(func() error {
			rank := usecase.SyncRank(groupCtx, member.UserId, &departmentId)
			team := usecase.SyncTeam(groupCtx, member.UserId, &departmentId)

			mu.Lock()
			defer mu.Unlock()
			response.Members++
			response.RankChanges += len(rank.Deltas)
			response.TeamChanges += len(team.Deltas)
			if !rank.Success || !team.Success {
				response.Failed++
			}
			return nil
		})
	}

	err = group.Wait()
	if err != nil {
		return response, err
	}

	usecase.Log.Info("department sync finished",
		zap.String("department_id", departmentId.String()),
		zap.Int("members", response.Members),
		zap.Int("rank_changes", response.RankChanges),
		zap.Int("team_changes", response.TeamChanges),
		zap.Int("failed", response.Failed),
	)

	return response, nil
}

// heldRoleIds keeps the roles held in guildId. A department without a guild matches any guild.
func heldRoleIds(roles []model.PlatformRole, guildId *string) map[string]bool {
	held := make(map[string]bool, len(roles))
	for _, role := range roles {
		if guildId != nil && *guildId != "" && role.GuildId != *guildId {
			continue
		}
		held[role.RoleId] = true
	}
	return held
}

func summarize(subject string, changes int, notes []string) string {
	if changes == 0 && len(notes) == 0 {
		return fmt.Sprintf("No %s changes needed", subject)
	}

	if changes == 0 {
		return fmt.Sprintf("No %s changes applied: %s", subject, strings.Join(notes, "; "))
	}

	return fmt.Sprintf("%d %s change(s): %s", changes, subject, strings.Join(notes, "; "))
}
