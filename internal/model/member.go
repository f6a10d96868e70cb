package model

import (
	"time"

	"github.com/google/uuid"
)

type MemberStatus string

const (
	MemberStatusInTraining     MemberStatus = "in_training"
	MemberStatusPending        MemberStatus = "pending"
	MemberStatusActive         MemberStatus = "active"
	MemberStatusWarned1        MemberStatus = "warned_1"
	MemberStatusWarned2        MemberStatus = "warned_2"
	MemberStatusWarned3        MemberStatus = "warned_3"
	MemberStatusSuspended      MemberStatus = "suspended"
	MemberStatusLeaveOfAbsence MemberStatus = "leave_of_absence"
	MemberStatusInactive       MemberStatus = "inactive"
	MemberStatusBlacklisted    MemberStatus = "blacklisted"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusInTraining, MemberStatusPending, MemberStatusActive,
		MemberStatusWarned1, MemberStatusWarned2, MemberStatusWarned3,
		MemberStatusSuspended, MemberStatusLeaveOfAbsence, MemberStatusInactive,
		MemberStatusBlacklisted:
		return true
	}
	return false
}

// StripsRoles reports whether entering this status removes the member's platform roles.
func (s MemberStatus) StripsRoles() bool {
	switch s {
	case MemberStatusInactive, MemberStatusSuspended, MemberStatusBlacklisted, MemberStatusLeaveOfAbsence:
		return true
	}
	return false
}

type Member struct {
	Id             uuid.UUID
	UserId         string
	DepartmentId   uuid.UUID
	RankId         *uuid.UUID
	PrimaryTeamId  *uuid.UUID
	Status         MemberStatus
	IsActive       bool
	CreateDatetime time.Time
	UpdateDatetime time.Time
}

// HoldsRoles is true while the member is expected to carry department roles on the platform.
func (m Member) HoldsRoles() bool {
	return m.IsActive && !m.Status.StripsRoles()
}

type MemberStatusUpdateRequest struct {
	Status   *string `json:"status"`
	IsActive *bool   `json:"isActive"`
}

type MemberResponse struct {
	Id            string  `json:"id"`
	UserId        string  `json:"userId"`
	DepartmentId  string  `json:"departmentId"`
	RankId        *string `json:"rankId"`
	PrimaryTeamId *string `json:"primaryTeamId"`
	Status        string  `json:"status"`
	IsActive      bool    `json:"isActive"`
}

func NewMemberResponse(member Member) MemberResponse {
	return MemberResponse{
		Id:            member.Id.String(),
		UserId:        member.UserId,
		DepartmentId:  member.DepartmentId.String(),
		RankId:        UUIDString(member.RankId),
		PrimaryTeamId: UUIDString(member.PrimaryTeamId),
		Status:        string(member.Status),
		IsActive:      member.IsActive,
	}
}

func UUIDString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func SameUUID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type MemberStatusUpdateResponse struct {
	Member MemberResponse    `json:"member"`
	Roles  *RoleChangeResult `json:"roles"`
}

type MemberRemovalResponse struct {
	MemberId string            `json:"memberId"`
	Hard     bool              `json:"hard"`
	Roles    *RoleChangeResult `json:"roles"`
}
