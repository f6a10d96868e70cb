package model

import (
	"time"

	"github.com/google/uuid"
)

type Department struct {
	Id             uuid.UUID
	Name           string
	GuildId        *string
	IsActive       bool
	CreateDatetime time.Time
	UpdateDatetime time.Time
}
