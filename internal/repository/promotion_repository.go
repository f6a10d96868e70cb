package repository

import (
	"context"

	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PromotionRepository is append-only: history rows are never updated or deleted.
type PromotionRepository struct {
	Log *zap.Logger
	DB  DB
}

func NewPromotionRepository(zap *zap.Logger, db DB) *PromotionRepository {
	return &PromotionRepository{
		Log: zap,
		DB:  db,
	}
}

func (repository *PromotionRepository) CreatePromotionHistory(ctx context.Context, entry model.PromotionHistory) error {
	query := `INSERT INTO promotion_history (id, member_id, department_id, user_id, from_rank_id, to_rank_id, actor_user_id, reason, create_datetime)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err := repository.DB.Exec(ctx, query, entry.Id, entry.MemberId, entry.DepartmentId, entry.UserId, entry.FromRankId, entry.ToRankId, entry.ActorUserId, entry.Reason, entry.CreateDatetime)
	if err != nil {
		return err
	}

	return nil
}

func (repository *PromotionRepository) ListByMember(ctx context.Context, memberId uuid.UUID) ([]model.PromotionHistory, error) {
	query := `SELECT id, member_id, department_id, user_id, from_rank_id, to_rank_id, actor_user_id, reason, create_datetime
			FROM promotion_history
			WHERE member_id=$1
			ORDER BY create_datetime DESC`

	rows, err := repository.DB.Query(ctx, query, memberId)
	if err != nil {
		return nil, err
	}

	return collectPromotionHistory(rows)
}

func (repository *PromotionRepository) ListByDepartment(ctx context.Context, departmentId uuid.UUID) ([]model.PromotionHistory, error) {
	query := `SELECT id, member_id, department_id, user_id, from_rank_id, to_rank_id, actor_user_id, reason, create_datetime
			FROM promotion_history
			WHERE department_id=$1
			ORDER BY create_datetime ASC`

	rows, err := repository.DB.Query(ctx, query, departmentId)
	if err != nil {
		return nil, err
	}

	return collectPromotionHistory(rows)
}

func collectPromotionHistory(rows pgx.Rows) ([]model.PromotionHistory, error) {
	defer rows.Close()

	entries := []model.PromotionHistory{}
	for rows.Next() {
		entry := model.PromotionHistory{}
		err := rows.Scan(&entry.Id, &entry.MemberId, &entry.DepartmentId, &entry.UserId, &entry.FromRankId, &entry.ToRankId, &entry.ActorUserId, &entry.Reason, &entry.CreateDatetime)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
