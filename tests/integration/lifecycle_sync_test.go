package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ferdian3456/rosterbridge/tests/integration/setup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleAndSync(t *testing.T) {
	r := startRoster(t)
	app := r.app.App

	officerMember := r.addMember(t, "officer-1", &r.officer, "role-officer")
	recruit := r.addMember(t, "recruit-1", nil, "")

	t.Log("=== Test 1: Suspension Strips Roles ===")
	req := setup.CreateAuthRequest(http.MethodPut, fmt.Sprintf("/api/members/%s/status", officerMember), []byte(`{"status":"suspended"}`), r.chiefToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := setup.GetDataAsMap(t, setup.ParseAPIResponse(t, resp))
	member := data["member"].(map[string]interface{})
	assert.Equal(t, "suspended", member["status"])
	assert.Empty(t, r.app.Platform.Roles("officer-1"))

	t.Log("=== Test 2: Reactivation Restores Roles ===")
	req = setup.CreateAuthRequest(http.MethodPut, fmt.Sprintf("/api/members/%s/status", officerMember), []byte(`{"status":"active"}`), r.chiefToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"role-officer"}, r.app.Platform.Roles("officer-1"))

	t.Log("=== Test 3: Unknown Status Is Rejected ===")
	req = setup.CreateAuthRequest(http.MethodPut, fmt.Sprintf("/api/members/%s/status", officerMember), []byte(`{"status":"retired"}`), r.chiefToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	t.Log("=== Test 4: Webhook Needs The API Key ===")
	req = setup.CreateJSONRequest(http.MethodPost, "/api/platform/member-updates", []byte(`{"userId":"recruit-1"}`))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	t.Log("=== Test 5: Webhook Reconciles A Role Granted On The Platform ===")
	r.app.Platform.Grant("recruit-1", "role-officer")
	req = setup.CreateJSONRequest(http.MethodPost, "/api/platform/member-updates", []byte(`{"userId":"recruit-1","guildId":"guild-1"}`))
	req.Header.Set("X-API-Key", setup.WebhookAPIKey)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored := setup.MemberRank(t, r.app.DB, recruit)
	require.NotNil(t, stored)
	assert.Equal(t, r.officer, *stored)

	t.Log("=== Test 6: Self Sync Is Idempotent ===")
	req = setup.CreateAuthRequest(http.MethodPost, "/api/users/me/sync", nil, setup.AccessToken(t, "recruit-1"))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data = setup.GetDataAsMap(t, setup.ParseAPIResponse(t, resp))
	rank := data["rank"].(map[string]interface{})
	assert.Equal(t, true, rank["success"])
	assert.Empty(t, rank["deltas"])

	t.Log("=== Test 7: Department Sync Joins The Patrol Team ===")
	r.app.Platform.Grant("officer-1", "role-team-patrol")
	req = setup.CreateAuthRequest(http.MethodPost, fmt.Sprintf("/api/departments/%s/sync", r.departmentId), nil, r.chiefToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data = setup.GetDataAsMap(t, setup.ParseAPIResponse(t, resp))
	assert.EqualValues(t, 3, data["members"])
	assert.EqualValues(t, 1, data["teamChanges"])
	assert.EqualValues(t, 0, data["failed"])

	t.Log("=== Test 8: Capacity Overview ===")
	req = setup.CreateAuthRequest(http.MethodGet, fmt.Sprintf("/api/departments/%s/capacity", r.departmentId), nil, r.chiefToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ranks := setup.GetDataAsArray(t, setup.ParseAPIResponse(t, resp))
	require.Len(t, ranks, 3)
	sergeant := ranks[1].(map[string]interface{})
	assert.Equal(t, "Sergeant", sergeant["rankName"])
	assert.EqualValues(t, 1, sergeant["availableSlots"])
	assert.Equal(t, false, sergeant["atCapacity"])

	t.Log("=== Test 9: Hard Removal Strips Roles And Deletes The Row ===")
	req = setup.CreateAuthRequest(http.MethodDelete, fmt.Sprintf("/api/members/%s?hard=true", officerMember), nil, r.chiefToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, r.app.Platform.Roles("officer-1"))

	req = setup.CreateAuthRequest(http.MethodGet, fmt.Sprintf("/api/members/%s/history", officerMember), nil, r.chiefToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
