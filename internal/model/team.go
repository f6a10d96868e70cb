package model

import (
	"time"

	"github.com/google/uuid"
)

type Team struct {
	Id             uuid.UUID
	DepartmentId   uuid.UUID
	Name           string
	RoleId         *string
	IsActive       bool
	CreateDatetime time.Time
	UpdateDatetime time.Time
}

type TeamMembership struct {
	Id             uuid.UUID
	MemberId       uuid.UUID
	TeamId         uuid.UUID
	CreateDatetime time.Time
}
