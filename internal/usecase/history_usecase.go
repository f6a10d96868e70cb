package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HistoryUsecase struct {
	DepartmentStore DepartmentStore
	MemberStore     MemberStore
	PromotionStore  PromotionStore
	ArchiveStore    ArchiveStore
	Authorizer      *Authorizer
	Log             *zap.Logger
	Now             func() time.Time
}

func NewHistoryUsecase(departmentStore DepartmentStore, memberStore MemberStore, promotionStore PromotionStore, archiveStore ArchiveStore, authorizer *Authorizer, zap *zap.Logger) *HistoryUsecase {
	return &HistoryUsecase{
		DepartmentStore: departmentStore,
		MemberStore:     memberStore,
		PromotionStore:  promotionStore,
		ArchiveStore:    archiveStore,
		Authorizer:      authorizer,
		Log:             zap,
		Now:             time.Now,
	}
}

// ListForMember returns the member's rank changes, newest first. Members may always read their own.
func (usecase *HistoryUsecase) ListForMember(ctx context.Context, actorUserId string, memberId uuid.UUID) ([]model.PromotionHistoryResponse, error) {
	member, err := usecase.MemberStore.GetMember(ctx, memberId)
	if err != nil {
		return nil, err
	}

	if member.UserId != actorUserId {
		_, err = usecase.Authorizer.Require(ctx, actorUserId, member.DepartmentId, model.CapabilityViewMembers)
		if err != nil {
			return nil, err
		}
	}

	entries, err := usecase.PromotionStore.ListByMember(ctx, memberId)
	if err != nil {
		return nil, err
	}

	return toHistoryResponses(entries), nil
}

// Archive writes the department's full promotion history to object storage as one JSON document.
func (usecase *HistoryUsecase) Archive(ctx context.Context, actorUserId string, departmentId uuid.UUID) (model.HistoryArchiveResponse, error) {
	response := model.HistoryArchiveResponse{}

	_, err := usecase.DepartmentStore.GetDepartment(ctx, departmentId)
	if err != nil {
		return response, err
	}

	_, err = usecase.Authorizer.Require(ctx, actorUserId, departmentId, model.CapabilityViewReports)
	if err != nil {
		return response, err
	}

	entries, err := usecase.PromotionStore.ListByDepartment(ctx, departmentId)
	if err != nil {
		return response, err
	}

	data, err := sonic.Marshal(toHistoryResponses(entries))
	if err != nil {
		return response, fmt.Errorf("marshal promotion history: %w", err)
	}

	objectKey := fmt.Sprintf("promotion-history/%s/%s.json", departmentId, usecase.Now().UTC().Format("20060102T150405Z"))

	err = usecase.ArchiveStore.PutJSON(ctx, objectKey, data)
	if err != nil {
		return response, err
	}

	usecase.Log.Info("promotion history archived",
		zap.String("department_id", departmentId.String()),
		zap.String("object_key", objectKey),
		zap.Int("entries", len(entries)),
	)

	response.Bucket = usecase.ArchiveStore.Bucket()
	response.ObjectKey = objectKey
	response.Entries = len(entries)

	return response, nil
}

func toHistoryResponses(entries []model.PromotionHistory) []model.PromotionHistoryResponse {
	responses := make([]model.PromotionHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, model.NewPromotionHistoryResponse(entry))
	}
	return responses
}
