package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const memberColumns = "id, user_id, department_id, rank_id, primary_team_id, status, is_active, create_datetime, update_datetime"

// Statuses whose members keep their platform roles and take part in reconciliation.
var roleHoldingStatuses = []string{
	string(model.MemberStatusInTraining),
	string(model.MemberStatusPending),
	string(model.MemberStatusActive),
	string(model.MemberStatusWarned1),
	string(model.MemberStatusWarned2),
	string(model.MemberStatusWarned3),
}

type MemberRepository struct {
	Log *zap.Logger
	DB  DB
}

func NewMemberRepository(zap *zap.Logger, db DB) *MemberRepository {
	return &MemberRepository{
		Log: zap,
		DB:  db,
	}
}

func (repository *MemberRepository) GetMember(ctx context.Context, memberId uuid.UUID) (model.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE id=$1 LIMIT 1"

	member, err := scanMember(repository.DB.QueryRow(ctx, query, memberId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member, &model.AppError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Member not found",
				Param:   "memberId",
			}
		}
		return member, err
	}

	return member, nil
}

func (repository *MemberRepository) GetMemberByUser(ctx context.Context, userId string, departmentId uuid.UUID) (model.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE user_id=$1 AND department_id=$2 LIMIT 1"

	member, err := scanMember(repository.DB.QueryRow(ctx, query, userId, departmentId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member, &model.AppError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Member not found in department",
				Param:   "userId",
			}
		}
		return member, err
	}

	return member, nil
}

// ListActiveMemberships returns the user's role-holding memberships, optionally limited to one department.
func (repository *MemberRepository) ListActiveMemberships(ctx context.Context, userId string, departmentId *uuid.UUID) ([]model.Member, error) {
	query := `SELECT ` + memberColumns + `
			FROM members
			WHERE user_id=$1 AND is_active=true AND status = ANY($2)
			AND ($3::uuid IS NULL OR department_id=$3)
			ORDER BY create_datetime ASC`

	rows, err := repository.DB.Query(ctx, query, userId, roleHoldingStatuses, departmentId)
	if err != nil {
		return nil, err
	}

	return collectMembers(rows)
}

func (repository *MemberRepository) ListActiveDepartmentMembers(ctx context.Context, departmentId uuid.UUID) ([]model.Member, error) {
	query := `SELECT ` + memberColumns + `
			FROM members
			WHERE department_id=$1 AND is_active=true AND status = ANY($2)
			ORDER BY create_datetime ASC`

	rows, err := repository.DB.Query(ctx, query, departmentId, roleHoldingStatuses)
	if err != nil {
		return nil, err
	}

	return collectMembers(rows)
}

func (repository *MemberRepository) UpdateMemberRank(ctx context.Context, memberId uuid.UUID, rankId *uuid.UUID) error {
	query := "UPDATE members SET rank_id=$1, update_datetime=$2 WHERE id=$3"

	_, err := repository.DB.Exec(ctx, query, rankId, time.Now().UTC(), memberId)
	if err != nil {
		return err
	}

	return nil
}

// ReplacePrimaryTeam moves the primary team and keeps team_memberships in step: the new team
// gets a membership row if missing and only the old primary team's row is removed.
func (repository *MemberRepository) ReplacePrimaryTeam(ctx context.Context, memberId uuid.UUID, oldTeamId *uuid.UUID, newTeamId *uuid.UUID) error {
	now := time.Now().UTC()
	commited := false

	tx, err := repository.DB.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx, "UPDATE members SET primary_team_id=$1, update_datetime=$2 WHERE id=$3", newTeamId, now, memberId)
	if err != nil {
		return err
	}

	if newTeamId != nil {
		query := "INSERT INTO team_memberships (id, member_id, team_id, create_datetime) VALUES ($1,$2,$3,$4) ON CONFLICT (member_id, team_id) DO NOTHING"
		_, err = tx.Exec(ctx, query, uuid.New(), memberId, *newTeamId, now)
		if err != nil {
			return err
		}
	}

	if oldTeamId != nil {
		_, err = tx.Exec(ctx, "DELETE FROM team_memberships WHERE member_id=$1 AND team_id=$2", memberId, *oldTeamId)
		if err != nil {
			return err
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}

	commited = true

	return nil
}

func (repository *MemberRepository) UpdateMemberStatus(ctx context.Context, memberId uuid.UUID, status model.MemberStatus, isActive bool) error {
	query := "UPDATE members SET status=$1, is_active=$2, update_datetime=$3 WHERE id=$4"

	_, err := repository.DB.Exec(ctx, query, string(status), isActive, time.Now().UTC(), memberId)
	if err != nil {
		return err
	}

	return nil
}

// DeleteMember is the hard-delete path; team memberships go with the row.
func (repository *MemberRepository) DeleteMember(ctx context.Context, memberId uuid.UUID) error {
	_, err := repository.DB.Exec(ctx, "DELETE FROM members WHERE id=$1", memberId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *MemberRepository) CountActiveByRank(ctx context.Context, rankId uuid.UUID) (int, error) {
	query := "SELECT COUNT(*) FROM members WHERE rank_id=$1 AND is_active=true"

	var count int
	err := repository.DB.QueryRow(ctx, query, rankId).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (repository *MemberRepository) CountActiveByRankInTeam(ctx context.Context, rankId uuid.UUID, teamId uuid.UUID) (int, error) {
	query := "SELECT COUNT(*) FROM members WHERE rank_id=$1 AND primary_team_id=$2 AND is_active=true"

	var count int
	err := repository.DB.QueryRow(ctx, query, rankId, teamId).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (repository *MemberRepository) ListTeamMemberships(ctx context.Context, memberId uuid.UUID) ([]model.TeamMembership, error) {
	query := "SELECT id, member_id, team_id, create_datetime FROM team_memberships WHERE member_id=$1 ORDER BY create_datetime ASC"

	rows, err := repository.DB.Query(ctx, query, memberId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := []model.TeamMembership{}
	for rows.Next() {
		membership := model.TeamMembership{}
		err = rows.Scan(&membership.Id, &membership.MemberId, &membership.TeamId, &membership.CreateDatetime)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, membership)
	}

	return memberships, rows.Err()
}

func scanMember(row pgx.Row) (model.Member, error) {
	member := model.Member{}
	var status string

	err := row.Scan(&member.Id, &member.UserId, &member.DepartmentId, &member.RankId, &member.PrimaryTeamId, &status, &member.IsActive, &member.CreateDatetime, &member.UpdateDatetime)
	if err != nil {
		return member, err
	}
	member.Status = model.MemberStatus(status)

	return member, nil
}

func collectMembers(rows pgx.Rows) ([]model.Member, error) {
	defer rows.Close()

	members := []model.Member{}
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}
