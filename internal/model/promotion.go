package model

import (
	"time"

	"github.com/google/uuid"
)

// PromotionHistory is immutable. MemberId becomes nil when the member row is hard-deleted.
type PromotionHistory struct {
	Id             uuid.UUID
	MemberId       *uuid.UUID
	DepartmentId   uuid.UUID
	UserId         string
	FromRankId     *uuid.UUID
	ToRankId       *uuid.UUID
	ActorUserId    string
	Reason         *string
	CreateDatetime time.Time
}

type PromotionRequest struct {
	TargetRankId string  `json:"targetRankId"`
	Reason       *string `json:"reason"`
}

type PromotionResult struct {
	Success     bool           `json:"success"`
	MemberId    uuid.UUID      `json:"memberId"`
	FromRankId  *uuid.UUID     `json:"fromRankId"`
	ToRankId    uuid.UUID      `json:"toRankId"`
	HistoryId   uuid.UUID      `json:"historyId"`
	RoleRemoved bool           `json:"roleRemoved"`
	RoleAdded   bool           `json:"roleAdded"`
	Sync        RankSyncResult `json:"sync"`
	Message     string         `json:"message"`
}

type PromotionHistoryResponse struct {
	Id             string    `json:"id"`
	MemberId       *string   `json:"memberId"`
	DepartmentId   string    `json:"departmentId"`
	UserId         string    `json:"userId"`
	FromRankId     *string   `json:"fromRankId"`
	ToRankId       *string   `json:"toRankId"`
	ActorUserId    string    `json:"actorUserId"`
	Reason         *string   `json:"reason"`
	CreateDatetime time.Time `json:"createDatetime"`
}

func NewPromotionHistoryResponse(entry PromotionHistory) PromotionHistoryResponse {
	return PromotionHistoryResponse{
		Id:             entry.Id.String(),
		MemberId:       UUIDString(entry.MemberId),
		DepartmentId:   entry.DepartmentId.String(),
		UserId:         entry.UserId,
		FromRankId:     UUIDString(entry.FromRankId),
		ToRankId:       UUIDString(entry.ToRankId),
		ActorUserId:    entry.ActorUserId,
		Reason:         entry.Reason,
		CreateDatetime: entry.CreateDatetime,
	}
}

type HistoryArchiveResponse struct {
	Bucket    string `json:"bucket"`
	ObjectKey string `json:"objectKey"`
	Entries   int    `json:"entries"`
}
