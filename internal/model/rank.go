package model

import (
	"time"

	"github.com/google/uuid"
)

type Rank struct {
	Id             uuid.UUID
	DepartmentId   uuid.UUID
	Name           string
	Level          int
	RoleId         *string
	MaxMembers     *int
	Permissions    Capability
	IsActive       bool
	CreateDatetime time.Time
	UpdateDatetime time.Time
}

// TeamRankLimit overrides a rank's department-wide capacity inside one team.
type TeamRankLimit struct {
	Id         uuid.UUID
	TeamId     uuid.UUID
	RankId     uuid.UUID
	MaxMembers int
}
