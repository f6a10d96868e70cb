package setup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/ferdian3456/rosterbridge/internal/util"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TruncateAllTables truncates all tables in correct order (children first, then parents)
func TruncateAllTables(t *testing.T, db *pgxpool.Pool, ctx context.Context) {
	tables := []string{
		"promotion_history",
		"team_memberships",
		"members",
		"team_rank_limits",
		"teams",
		"ranks",
		"departments",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "failed to truncate table %s", table)
	}
}

func SeedDepartment(t *testing.T, db *pgxpool.Pool, name string, guildId *string) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO departments (id, name, guild_id) VALUES ($1,$2,$3)", id, name, guildId)
	require.NoError(t, err, "failed to seed department")
	return id
}

func SeedRank(t *testing.T, db *pgxpool.Pool, departmentId uuid.UUID, name string, level int, roleId string, maxMembers *int, permissions model.Capability) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO ranks (id, department_id, name, level, role_id, max_members, permissions) VALUES ($1,$2,$3,$4,$5,$6,$7)",
		id, departmentId, name, level, roleId, maxMembers, int64(permissions))
	require.NoError(t, err, "failed to seed rank %s", name)
	return id
}

func SeedTeam(t *testing.T, db *pgxpool.Pool, departmentId uuid.UUID, name string, roleId string) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO teams (id, department_id, name, role_id, create_datetime) VALUES ($1,$2,$3,$4,$5)",
		id, departmentId, name, roleId, time.Now().UTC())
	require.NoError(t, err, "failed to seed team %s", name)
	return id
}

func SeedMember(t *testing.T, db *pgxpool.Pool, userId string, departmentId uuid.UUID, rankId *uuid.UUID, teamId *uuid.UUID) uuid.UUID {
	ctx := context.Background()
	id := uuid.New()
	_, err := db.Exec(ctx,
		"INSERT INTO members (id, user_id, department_id, rank_id, primary_team_id) VALUES ($1,$2,$3,$4,$5)",
		id, userId, departmentId, rankId, teamId)
	require.NoError(t, err, "failed to seed member %s", userId)

	if teamId != nil {
		_, err = db.Exec(ctx, "INSERT INTO team_memberships (id, member_id, team_id) VALUES ($1,$2,$3)", uuid.New(), id, *teamId)
		require.NoError(t, err, "failed to seed team membership for %s", userId)
	}

	return id
}

// MemberRank reads the stored rank straight from the database.
func MemberRank(t *testing.T, db *pgxpool.Pool, memberId uuid.UUID) *uuid.UUID {
	var rankId *uuid.UUID
	err := db.QueryRow(context.Background(), "SELECT rank_id FROM members WHERE id=$1", memberId).Scan(&rankId)
	require.NoError(t, err)
	return rankId
}

func CountHistory(t *testing.T, db *pgxpool.Pool, memberId uuid.UUID) int {
	var count int
	err := db.QueryRow(context.Background(), "SELECT COUNT(*) FROM promotion_history WHERE member_id=$1", memberId).Scan(&count)
	require.NoError(t, err)
	return count
}

// CountUserHistory counts a user's rows in a department, including rows of deleted members.
func CountUserHistory(t *testing.T, db *pgxpool.Pool, departmentId uuid.UUID, userId string) int {
	var count int
	err := db.QueryRow(context.Background(), "SELECT COUNT(*) FROM promotion_history WHERE department_id=$1 AND user_id=$2", departmentId, userId).Scan(&count)
	require.NoError(t, err)
	return count
}

func AccessToken(t *testing.T, userId string) string {
	token, err := util.GenerateAccessToken(userId, JWTSecretKey)
	require.NoError(t, err, "failed to sign access token")
	return token
}

// CreateJSONRequest creates a test request with JSON body
func CreateJSONRequest(method, url string, jsonBody []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// CreateAuthRequest creates a test request with JSON body and Authorization header
func CreateAuthRequest(method, url string, jsonBody []byte, token string) *http.Request {
	req := CreateJSONRequest(method, url, jsonBody)
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	return req
}

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Data  interface{}    `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

// ParseAPIResponse parses HTTP response into strongly-typed APIResponse struct
func ParseAPIResponse(t *testing.T, resp *http.Response) APIResponse {
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.NotEmpty(t, body, "response body should not be empty")

	var apiResp APIResponse
	err = json.Unmarshal(body, &apiResp)
	require.NoError(t, err, "failed to parse JSON response: %s", body)

	return apiResp
}

// ParseErrorResponse requires an error envelope and returns it
func ParseErrorResponse(t *testing.T, resp *http.Response) ErrorResponse {
	apiResp := ParseAPIResponse(t, resp)
	require.NotNil(t, apiResp.Error, "response should contain error field")
	return *apiResp.Error
}

// GetDataAsMap extracts data field as map (for single object responses)
func GetDataAsMap(t *testing.T, resp APIResponse) map[string]interface{} {
	require.NotNil(t, resp.Data, "response should have data field")
	dataMap, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data field should be an object/map")
	return dataMap
}

// GetDataAsArray extracts data field as array (for list responses)
func GetDataAsArray(t *testing.T, resp APIResponse) []interface{} {
	require.NotNil(t, resp.Data, "response should have data field")
	dataArray, ok := resp.Data.([]interface{})
	require.True(t, ok, "data field should be an array")
	return dataArray
}
