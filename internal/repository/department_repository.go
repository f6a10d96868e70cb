package repository

import (
	"context"
	"errors"

	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type DepartmentRepository struct {
	Log *zap.Logger
	DB  DB
}

func NewDepartmentRepository(zap *zap.Logger, db DB) *DepartmentRepository {
	return &DepartmentRepository{
		Log: zap,
		DB:  db,
	}
}

func (repository *DepartmentRepository) GetDepartment(ctx context.Context, departmentId uuid.UUID) (model.Department, error) {
	query := "SELECT id, name, guild_id, is_active, create_datetime, update_datetime FROM departments WHERE id=$1 LIMIT 1"

	department := model.Department{}
	err := repository.DB.QueryRow(ctx, query, departmentId).Scan(&department.Id, &department.Name, &department.GuildId, &department.IsActive, &department.CreateDatetime, &department.UpdateDatetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department, &model.AppError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Department not found",
				Param:   "departmentId",
			}
		}
		return department, err
	}

	return department, nil
}

func (repository *DepartmentRepository) GetRank(ctx context.Context, rankId uuid.UUID) (model.Rank, error) {
	query := "SELECT id, department_id, name, level, role_id, max_members, permissions, is_active, create_datetime, update_datetime FROM ranks WHERE id=$1 LIMIT 1"

	rank, err := scanRank(repository.DB.QueryRow(ctx, query, rankId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rank, &model.AppError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Rank not found",
				Param:   "rankId",
			}
		}
		return rank, err
	}

	return rank, nil
}

// ListActiveRanks returns the department's active ranks ordered by ascending level.
func (repository *DepartmentRepository) ListActiveRanks(ctx context.Context, departmentId uuid.UUID) ([]model.Rank, error) {
	query := `SELECT id, department_id, name, level, role_id, max_members, permissions, is_active, create_datetime, update_datetime
			FROM ranks
			WHERE department_id=$1 AND is_active=true
			ORDER BY level ASC, id ASC`

	rows, err := repository.DB.Query(ctx, query, departmentId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranks := []model.Rank{}
	for rows.Next() {
		rank, err := scanRank(rows)
		if err != nil {
			return nil, err
		}
		ranks = append(ranks, rank)
	}

	return ranks, rows.Err()
}

func (repository *DepartmentRepository) GetTeam(ctx context.Context, teamId uuid.UUID) (model.Team, error) {
	query := "SELECT id, department_id, name, role_id, is_active, create_datetime, update_datetime FROM teams WHERE id=$1 LIMIT 1"

	team := model.Team{}
	err := repository.DB.QueryRow(ctx, query, teamId).Scan(&team.Id, &team.DepartmentId, &team.Name, &team.RoleId, &team.IsActive, &team.CreateDatetime, &team.UpdateDatetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team, &model.AppError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Team not found",
				Param:   "teamId",
			}
		}
		return team, err
	}

	return team, nil
}

// ListActiveTeams returns the department's active teams in declaration order.
func (repository *DepartmentRepository) ListActiveTeams(ctx context.Context, departmentId uuid.UUID) ([]model.Team, error) {
	query := `SELECT id, department_id, name, role_id, is_active, create_datetime, update_datetime
			FROM teams
			WHERE department_id=$1 AND is_active=true
			ORDER BY create_datetime ASC, id ASC`

	rows, err := repository.DB.Query(ctx, query, departmentId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []model.Team{}
	for rows.Next() {
		team := model.Team{}
		err = rows.Scan(&team.Id, &team.DepartmentId, &team.Name, &team.RoleId, &team.IsActive, &team.CreateDatetime, &team.UpdateDatetime)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// GetTeamRankLimit returns nil when the team has no override for the rank.
func (repository *DepartmentRepository) GetTeamRankLimit(ctx context.Context, teamId uuid.UUID, rankId uuid.UUID) (*int, error) {
	query := "SELECT max_members FROM team_rank_limits WHERE team_id=$1 AND rank_id=$2 LIMIT 1"

	var maxMembers int
	err := repository.DB.QueryRow(ctx, query, teamId, rankId).Scan(&maxMembers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &maxMembers, nil
}

func (repository *DepartmentRepository) ListTeamRankLimits(ctx context.Context, teamId uuid.UUID) (map[uuid.UUID]int, error) {
	query := "SELECT rank_id, max_members FROM team_rank_limits WHERE team_id=$1"

	rows, err := repository.DB.Query(ctx, query, teamId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	limits := map[uuid.UUID]int{}
	for rows.Next() {
		var rankId uuid.UUID
		var maxMembers int
		err = rows.Scan(&rankId, &maxMembers)
		if err != nil {
			return nil, err
		}
		limits[rankId] = maxMembers
	}

	return limits, rows.Err()
}

func scanRank(row pgx.Row) (model.Rank, error) {
	rank := model.Rank{}
	var permissions int64

	err := row.Scan(&rank.Id, &rank.DepartmentId, &rank.Name, &rank.Level, &rank.RoleId, &rank.MaxMembers, &permissions, &rank.IsActive, &rank.CreateDatetime, &rank.UpdateDatetime)
	if err != nil {
		return rank, err
	}
	rank.Permissions = model.Capability(permissions)

	return rank, nil
}
