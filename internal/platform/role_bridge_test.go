package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type platformStub struct {
	mu        sync.Mutex
	mutations map[string][]model.PlatformRoleMutation
	apiKeys   []string
}

func newPlatformStub(t *testing.T) (*platformStub, *httptest.Server) {
	stub := &platformStub{mutations: map[string][]model.PlatformRoleMutation{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /roles/{action}", func(w http.ResponseWriter, r *http.Request) {
		if !stub.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var mutation model.PlatformRoleMutation
		if err := json.NewDecoder(r.Body).Decode(&mutation); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if mutation.RoleId == "forbidden-role" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		stub.mu.Lock()
		stub.mutations[r.PathValue("action")] = append(stub.mutations[r.PathValue("action")], mutation)
		stub.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /roles/{roleId}/guild", func(w http.ResponseWriter, r *http.Request) {
		if !stub.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.PathValue("roleId") != "role-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"guildId":"guild-1"}`))
	})
	mux.HandleFunc("GET /users/{userId}/roles", func(w http.ResponseWriter, r *http.Request) {
		if !stub.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.PathValue("userId") {
		case "slow":
			time.Sleep(500 * time.Millisecond)
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
			return
		case "nobody":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"roles":null}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"roles":[{"roleId":"role-1","guildId":"guild-1","roleName":"Officer"},{"roleId":"role-9","guildId":"guild-2","roleName":"Other"}]}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return stub, server
}

func (s *platformStub) authorized(r *http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKeys = append(s.apiKeys, r.Header.Get(APIKeyHeader))
	return r.Header.Get(APIKeyHeader) == "secret"
}

func TestRoleMutations(t *testing.T) {
	stub, server := newPlatformStub(t)
	bridge := NewRoleBridge(zap.NewNop(), server.URL+"/", "secret", time.Second)
	ctx := context.Background()

	assert.True(t, bridge.AddRole(ctx, "u-1", "role-1", "guild-1"))
	assert.True(t, bridge.RemoveRole(ctx, "u-1", "role-2", "guild-1"))
	assert.False(t, bridge.AddRole(ctx, "u-1", "forbidden-role", "guild-1"), "non-2xx is a soft failure")

	assert.Equal(t, []model.PlatformRoleMutation{{UserId: "u-1", RoleId: "role-1", GuildId: "guild-1"}}, stub.mutations["add"])
	assert.Equal(t, []model.PlatformRoleMutation{{UserId: "u-1", RoleId: "role-2", GuildId: "guild-1"}}, stub.mutations["remove"])
	for _, key := range stub.apiKeys {
		assert.Equal(t, "secret", key)
	}
}

func TestResolveGuildId(t *testing.T) {
	_, server := newPlatformStub(t)
	bridge := NewRoleBridge(zap.NewNop(), server.URL, "secret", time.Second)
	ctx := context.Background()

	guildId, ok := bridge.ResolveGuildId(ctx, "role-1")
	assert.True(t, ok)
	assert.Equal(t, "guild-1", guildId)

	guildId, ok = bridge.ResolveGuildId(ctx, "unknown")
	assert.False(t, ok)
	assert.Empty(t, guildId)
}

func TestListRoles(t *testing.T) {
	_, server := newPlatformStub(t)
	bridge := NewRoleBridge(zap.NewNop(), server.URL, "secret", 200*time.Millisecond)
	ctx := context.Background()

	roles, ok := bridge.ListRoles(ctx, "u-1")
	require.True(t, ok)
	require.Len(t, roles, 2)
	assert.Equal(t, model.PlatformRole{RoleId: "role-1", GuildId: "guild-1", RoleName: "Officer"}, roles[0])

	roles, ok = bridge.ListRoles(ctx, "nobody")
	assert.True(t, ok, "holding no roles is a successful read")
	assert.Empty(t, roles)

	roles, ok = bridge.ListRoles(ctx, "broken")
	assert.False(t, ok)
	assert.Empty(t, roles)

	roles, ok = bridge.ListRoles(ctx, "slow")
	assert.False(t, ok, "timeout is a soft failure")
	assert.Empty(t, roles)
}

func TestBridgeFailsSoft(t *testing.T) {
	_, server := newPlatformStub(t)
	ctx := context.Background()

	wrongKey := NewRoleBridge(zap.NewNop(), server.URL, "wrong", time.Second)
	assert.False(t, wrongKey.AddRole(ctx, "u-1", "role-1", "guild-1"))
	_, ok := wrongKey.ListRoles(ctx, "u-1")
	assert.False(t, ok)

	unreachable := NewRoleBridge(zap.NewNop(), "http://127.0.0.1:1", "secret", 200*time.Millisecond)
	assert.False(t, unreachable.RemoveRole(ctx, "u-1", "role-1", "guild-1"))
	_, ok = unreachable.ResolveGuildId(ctx, "role-1")
	assert.False(t, ok)

	malformed := NewRoleBridge(zap.NewNop(), "ftp://platform.invalid", "secret", time.Second)
	assert.False(t, malformed.AddRole(ctx, "u-1", "role-1", "guild-1"))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	bridge := NewRoleBridge(zap.NewNop(), server.URL, "secret", time.Second)
	assert.False(t, bridge.AddRole(cancelled, "u-1", "role-1", "guild-1"))
	_, ok = bridge.ListRoles(cancelled, "u-1")
	assert.False(t, ok)
}
