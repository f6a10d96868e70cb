package usecase

import (
	"context"
	"time"

	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/google/uuid"
)

type DepartmentStore interface {
	GetDepartment(ctx context.Context, departmentId uuid.UUID) (model.Department, error)
	GetRank(ctx context.Context, rankId uuid.UUID) (model.Rank, error)
	ListActiveRanks(ctx context.Context, departmentId uuid.UUID) ([]model.Rank, error)
	GetTeam(ctx context.Context, teamId uuid.UUID) (model.Team, error)
	ListActiveTeams(ctx context.Context, departmentId uuid.UUID) ([]model.Team, error)
	GetTeamRankLimit(ctx context.Context, teamId uuid.UUID, rankId uuid.UUID) (*int, error)
	ListTeamRankLimits(ctx context.Context, teamId uuid.UUID) (map[uuid.UUID]int, error)
}

type MemberStore interface {
	GetMember(ctx context.Context, memberId uuid.UUID) (model.Member, error)
	GetMemberByUser(ctx context.Context, userId string, departmentId uuid.UUID) (model.Member, error)
	ListActiveMemberships(ctx context.Context, userId string, departmentId *uuid.UUID) ([]model.Member, error)
	ListActiveDepartmentMembers(ctx context.Context, departmentId uuid.UUID) ([]model.Member, error)
	UpdateMemberRank(ctx context.Context, memberId uuid.UUID, rankId *uuid.UUID) error
	ReplacePrimaryTeam(ctx context.Context, memberId uuid.UUID, oldTeamId *uuid.UUID, newTeamId *uuid.UUID) error
	UpdateMemberStatus(ctx context.Context, memberId uuid.UUID, status model.MemberStatus, isActive bool) error
	DeleteMember(ctx context.Context, memberId uuid.UUID) error
	CountActiveByRank(ctx context.Context, rankId uuid.UUID) (int, error)
	CountActiveByRankInTeam(ctx context.Context, rankId uuid.UUID, teamId uuid.UUID) (int, error)
	ListTeamMemberships(ctx context.Context, memberId uuid.UUID) ([]model.TeamMembership, error)
}

type PromotionStore interface {
	CreatePromotionHistory(ctx context.Context, entry model.PromotionHistory) error
	ListByMember(ctx context.Context, memberId uuid.UUID) ([]model.PromotionHistory, error)
	ListByDepartment(ctx context.Context, departmentId uuid.UUID) ([]model.PromotionHistory, error)
}

type ArchiveStore interface {
	Bucket() string
	PutJSON(ctx context.Context, objectKey string, data []byte) error
}

// RoleBridge is the platform's role API. Implementations fail soft and never return errors.
type RoleBridge interface {
	AddRole(ctx context.Context, userId string, roleId string, guildId string) bool
	RemoveRole(ctx context.Context, userId string, roleId string, guildId string) bool
	ResolveGuildId(ctx context.Context, roleId string) (string, bool)
	ListRoles(ctx context.Context, userId string) ([]model.PlatformRole, bool)
}

// Barrier blocks between a platform mutation and the read-back of the platform state.
type Barrier interface {
	Wait()
}

// SleepBarrier waits a fixed delay. It does not observe cancellation and does not retry.
type SleepBarrier struct {
	Delay time.Duration
}

func (barrier SleepBarrier) Wait() {
	if barrier.Delay > 0 {
		time.Sleep(barrier.Delay)
	}
}
