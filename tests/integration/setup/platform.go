package setup

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/ferdian3456/rosterbridge/internal/model"
)

const PlatformAPIKey = "platform-test-key"

// FakePlatform is an in-memory role store behind the platform's HTTP API.
type FakePlatform struct {
	mu     sync.Mutex
	roles  map[string]map[string]string // user -> role -> guild
	guilds map[string]string            // role -> guild

	Server *httptest.Server
}

func StartFakePlatform(t *testing.T) *FakePlatform {
	platform := &FakePlatform{
		roles:  map[string]map[string]string{},
		guilds: map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /roles/{action}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != PlatformAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var mutation model.PlatformRoleMutation
		if err := json.NewDecoder(r.Body).Decode(&mutation); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		platform.mu.Lock()
		defer platform.mu.Unlock()
		switch r.PathValue("action") {
		case "add":
			if platform.roles[mutation.UserId] == nil {
				platform.roles[mutation.UserId] = map[string]string{}
			}
			platform.roles[mutation.UserId][mutation.RoleId] = mutation.GuildId
		case "remove":
			delete(platform.roles[mutation.UserId], mutation.RoleId)
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /roles/{roleId}/guild", func(w http.ResponseWriter, r *http.Request) {
		platform.mu.Lock()
		guildId, ok := platform.guilds[r.PathValue("roleId")]
		platform.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, model.PlatformGuildResponse{GuildId: guildId})
	})
	mux.HandleFunc("GET /users/{userId}/roles", func(w http.ResponseWriter, r *http.Request) {
		platform.mu.Lock()
		response := model.PlatformRolesResponse{Roles: []model.PlatformRole{}}
		for roleId, guildId := range platform.roles[r.PathValue("userId")] {
			response.Roles = append(response.Roles, model.PlatformRole{RoleId: roleId, GuildId: guildId})
		}
		platform.mu.Unlock()
		writeJSON(w, response)
	})

	platform.Server = httptest.NewServer(mux)
	t.Cleanup(platform.Server.Close)

	return platform
}

func (platform *FakePlatform) RegisterRole(roleId string, guildId string) {
	platform.mu.Lock()
	defer platform.mu.Unlock()
	platform.guilds[roleId] = guildId
}

func (platform *FakePlatform) Grant(userId string, roleId string) {
	platform.mu.Lock()
	defer platform.mu.Unlock()
	if platform.roles[userId] == nil {
		platform.roles[userId] = map[string]string{}
	}
	platform.roles[userId][roleId] = platform.guilds[roleId]
}

func (platform *FakePlatform) Roles(userId string) []string {
	platform.mu.Lock()
	defer platform.mu.Unlock()
	roles := []string{}
	for roleId := range platform.roles[userId] {
		roles = append(roles, roleId)
	}
	sort.Strings(roles)
	return roles
}

func (platform *FakePlatform) Reset() {
	platform.mu.Lock()
	defer platform.mu.Unlock()
	platform.roles = map[string]map[string]string{}
	platform.guilds = map[string]string{}
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
