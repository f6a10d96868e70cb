package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LifecycleUsecase struct {
	DepartmentStore DepartmentStore
	MemberStore     MemberStore
	RoleBridge      RoleBridge
	Authorizer      *Authorizer
	Log             *zap.Logger
}

func NewLifecycleUsecase(departmentStore DepartmentStore, memberStore MemberStore, roleBridge RoleBridge, authorizer *Authorizer, zap *zap.Logger) *LifecycleUsecase {
	return &LifecycleUsecase{
		DepartmentStore: departmentStore,
		MemberStore:     memberStore,
		RoleBridge:      roleBridge,
		Authorizer:      authorizer,
		Log:             zap,
	}
}

// RemoveRolesForInactive strips the rank, primary team and secondary team roles. Individual
// failures are logged and skipped.
func (usecase *LifecycleUsecase) RemoveRolesForInactive(ctx context.Context, userId string, departmentId uuid.UUID) model.RoleChangeResult {
	member, err := usecase.MemberStore.GetMemberByUser(ctx, userId, departmentId)
	if err != nil {
		usecase.Log.Warn("failed to load member for role removal", zap.String("user_id", userId), zap.Error(err))
		return model.RoleChangeResult{Roles: []string{}, Message: "Member not found in department"}
	}

	return usecase.applyRoles(ctx, member, "remove")
}

func (usecase *LifecycleUsecase) RestoreRolesForActive(ctx context.Context, userId string, departmentId uuid.UUID) model.RoleChangeResult {
	member, err := usecase.MemberStore.GetMemberByUser(ctx, userId, departmentId)
	if err != nil {
		usecase.Log.Warn("failed to load member for role restoration", zap.String("user_id", userId), zap.Error(err))
		return model.RoleChangeResult{Roles: []string{}, Message: "Member not found in department"}
	}

	return usecase.applyRoles(ctx, member, "add")
}

// HandleTransition removes roles when the member leaves the role-holding set and restores them
// when the member returns to active. It returns nil when the transition triggers nothing.
func (usecase *LifecycleUsecase) HandleTransition(ctx context.Context, before model.Member, after model.Member) *model.RoleChangeResult {
	enteredStripStatus := after.Status.StripsRoles() && after.Status != before.Status
	deactivated := before.IsActive && !after.IsActive

	if enteredStripStatus || deactivated {
		result := usecase.RemoveRolesForInactive(ctx, after.UserId, after.DepartmentId)
		return &result
	}

	enteredActive := after.Status == model.MemberStatusActive && before.Status != model.MemberStatusActive
	reactivated := !before.IsActive && after.IsActive

	if (enteredActive || reactivated) && after.HoldsRoles() {
		result := usecase.RestoreRolesForActive(ctx, after.UserId, after.DepartmentId)
		return &result
	}

	return nil
}

func (usecase *LifecycleUsecase) UpdateStatus(ctx context.Context, actorUserId string, memberId uuid.UUID, request model.MemberStatusUpdateRequest) (model.MemberStatusUpdateResponse, error) {
	response := model.MemberStatusUpdateResponse{}

	if request.Status == nil && request.IsActive == nil {
		return response, &model.AppError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Status or isActive is required",
			Param:   "status",
		}
	}

	if request.Status != nil && !model.MemberStatus(*request.Status).Valid() {
		return response, &model.AppError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Status is not a known member status",
			Param:   "status",
		}
	}

	before, err := usecase.MemberStore.GetMember(ctx, memberId)
	if err != nil {
		return response, err
	}

	err = usecase.authorizeMemberAction(ctx, actorUserId, before)
	if err != nil {
		return response, err
	}

	after := before
	if request.Status != nil {
		after.Status = model.MemberStatus(*request.Status)
	}
	if request.IsActive != nil {
		after.IsActive = *request.IsActive
	}

	response.Member = model.NewMemberResponse(after)
	if after.Status == before.Status && after.IsActive == before.IsActive {
		return response, nil
	}

	err = usecase.MemberStore.UpdateMemberStatus(ctx, memberId, after.Status, after.IsActive)
	if err != nil {
		return response, err
	}

	usecase.Log.Info("member status updated",
		zap.String("member_id", memberId.String()),
		zap.String("actor_user_id", actorUserId),
		zap.String("from_status", string(before.Status)),
		zap.String("to_status", string(after.Status)),
		zap.Bool("is_active", after.IsActive),
	)

	response.Roles = usecase.HandleTransition(ctx, before, after)

	return response, nil
}

// RemoveMember soft-deletes by clearing the active flag, or deletes the row when hard is set.
// Roles are stripped first in both cases.
func (usecase *LifecycleUsecase) RemoveMember(ctx context.Context, actorUserId string, memberId uuid.UUID, hard bool) (model.MemberRemovalResponse, error) {
	response := model.MemberRemovalResponse{MemberId: memberId.String(), Hard: hard}

	member, err := usecase.MemberStore.GetMember(ctx, memberId)
	if err != nil {
		return response, err
	}

	err = usecase.authorizeMemberAction(ctx, actorUserId, member)
	if err != nil {
		return response, err
	}

	if member.HoldsRoles() {
		result := usecase.applyRoles(ctx, member, "remove")
		response.Roles = &result
	}

	if hard {
		err = usecase.MemberStore.DeleteMember(ctx, memberId)
	} else {
		err = usecase.MemberStore.UpdateMemberStatus(ctx, memberId, member.Status, false)
	}
	if err != nil {
		return response, err
	}

	usecase.Log.Info("member removed",
		zap.String("member_id", memberId.String()),
		zap.String("actor_user_id", actorUserId),
		zap.Bool("hard", hard),
	)

	return response, nil
}

func (usecase *LifecycleUsecase) authorizeMemberAction(ctx context.Context, actorUserId string, target model.Member) error {
	if actorUserId == target.UserId {
		return &model.AppError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "You cannot change your own membership",
			Param:   "memberId",
		}
	}

	actor, err := usecase.Authorizer.Require(ctx, actorUserId, target.DepartmentId, model.CapabilityManageMembers)
	if err != nil {
		return err
	}

	targetLevel := 0
	if target.RankId != nil {
		rank, err := usecase.DepartmentStore.GetRank(ctx, *target.RankId)
		if err != nil {
			return err
		}
		targetLevel = rank.Level
	}

	return actor.Outranks(targetLevel)
}

func (usecase *LifecycleUsecase) applyRoles(ctx context.Context, member model.Member, action string) model.RoleChangeResult {
	result := model.RoleChangeResult{Success: true, Roles: []string{}}

	department, err := usecase.DepartmentStore.GetDepartment(ctx, member.DepartmentId)
	if err != nil {
		usecase.Log.Warn("failed to load department for role change", zap.String("department_id", member.DepartmentId.String()), zap.Error(err))
	}

	roleIds := usecase.memberRoleIds(ctx, member)
	skipped := []string{}

	for _, roleId := range roleIds {
		guildId, ok := usecase.RoleBridge.ResolveGuildId(ctx, roleId)
		if !ok && department.GuildId != nil {
			guildId, ok = *department.GuildId, *department.GuildId != ""
		}

		if !ok {
			usecase.Log.Warn("no guild for role, skipping",
				zap.String("action", action),
				zap.String("user_id", member.UserId),
				zap.String("role_id", roleId),
			)
			skipped = append(skipped, roleId)
			continue
		}

		var applied bool
		if action == "remove" {
			applied = usecase.RoleBridge.RemoveRole(ctx, member.UserId, roleId, guildId)
		} else {
			applied = usecase.RoleBridge.AddRole(ctx, member.UserId, roleId, guildId)
		}

		if !applied {
			skipped = append(skipped, roleId)
			continue
		}

		result.Roles = append(result.Roles, roleId)
	}

	verb := "Removed"
	if action == "add" {
		verb = "Restored"
	}

	result.Message = fmt.Sprintf("%s %d of %d role(s)", verb, len(result.Roles), len(roleIds))
	if len(skipped) > 0 {
		result.Message += fmt.Sprintf(", skipped: %s", strings.Join(skipped, ", "))
	}

	return result
}

// memberRoleIds lists the rank role, the primary team role and every secondary team role,
// without duplicates.
func (usecase *LifecycleUsecase) memberRoleIds(ctx context.Context, member model.Member) []string {
	roleIds := []string{}
	seen := map[string]bool{}
	add := func(roleId *string) {
		if roleId == nil || *roleId == "" || seen[*roleId] {
			return
		}
		seen[*roleId] = true
		roleIds = append(roleIds, *roleId)
	}

	if member.RankId != nil {
		rank, err := usecase.DepartmentStore.GetRank(ctx, *member.RankId)
		if err != nil {
			usecase.Log.Warn("failed to load rank for role change", zap.String("rank_id", member.RankId.String()), zap.Error(err))
		} else {
			add(rank.RoleId)
		}
	}

	teamIds := []uuid.UUID{}
	if member.PrimaryTeamId != nil {
		teamIds = append(teamIds, *member.PrimaryTeamId)
	}

	memberships, err := usecase.MemberStore.ListTeamMemberships(ctx, member.Id)
	if err != nil {
		usecase.Log.Warn("failed to list team memberships for role change", zap.String("member_id", member.Id.String()), zap.Error(err))
	}
	for _, membership := range memberships {
		teamIds = append(teamIds, membership.TeamId)
	}

	seenTeams := map[uuid.UUID]bool{}
	for _, teamId := range teamIds {
		if seenTeams[teamId] {
			continue
		}
		seenTeams[teamId] = true

		team, err := usecase.DepartmentStore.GetTeam(ctx, teamId)
		if err != nil {
			usecase.Log.Warn("failed to load team for role change", zap.String("team_id", teamId.String()), zap.Error(err))
			continue
		}
		add(team.RoleId)
	}

	return roleIds
}
