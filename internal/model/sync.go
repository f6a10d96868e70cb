package model

import "github.com/google/uuid"

type RankDelta struct {
	DepartmentId uuid.UUID  `json:"departmentId"`
	OldRankId    *uuid.UUID `json:"oldRankId"`
	NewRankId    *uuid.UUID `json:"newRankId"`
}

type RankSyncResult struct {
	Success bool        `json:"success"`
	Deltas  []RankDelta `json:"deltas"`
	Message string      `json:"message"`
}

type TeamDelta struct {
	DepartmentId uuid.UUID  `json:"departmentId"`
	OldTeamId    *uuid.UUID `json:"oldTeamId"`
	NewTeamId    *uuid.UUID `json:"newTeamId"`
}

type TeamSyncResult struct {
	Success bool        `json:"success"`
	Deltas  []TeamDelta `json:"deltas"`
	Message string      `json:"message"`
}

type SyncRequest struct {
	DepartmentId *string `json:"departmentId"`
}

type MemberSyncResponse struct {
	Rank RankSyncResult `json:"rank"`
	Team TeamSyncResult `json:"team"`
}

type DepartmentSyncResponse struct {
	DepartmentId uuid.UUID `json:"departmentId"`
	Members      int       `json:"members"`
	RankChanges  int       `json:"rankChanges"`
	TeamChanges  int       `json:"teamChanges"`
	Failed       int       `json:"failed"`
}

type MemberUpdateResult struct {
	UserId  string          `json:"userId"`
	Skipped bool            `json:"skipped"`
	Rank    *RankSyncResult `json:"rank,omitempty"`
	Team    *TeamSyncResult `json:"team,omitempty"`
}

// RoleChangeResult reports a best-effort batch of platform role removals or additions.
type RoleChangeResult struct {
	Success bool     `json:"success"`
	Roles   []string `json:"roles"`
	Message string   `json:"message"`
}
