package model

import "github.com/google/uuid"

type CapacityCheck struct {
	CanPromote      bool   `json:"canPromote"`
	Reason          string `json:"reason"`
	DepartmentLimit *int   `json:"departmentLimit"`
	TeamLimit       *int   `json:"teamLimit"`
	CurrentCount    int    `json:"currentCount"`
}

type RankCapacityInfo struct {
	RankId         uuid.UUID `json:"rankId"`
	RankName       string    `json:"rankName"`
	Level          int       `json:"level"`
	Limit          *int      `json:"limit"`
	CurrentCount   int       `json:"currentCount"`
	AvailableSlots *int      `json:"availableSlots"`
	AtCapacity     bool      `json:"atCapacity"`
}
