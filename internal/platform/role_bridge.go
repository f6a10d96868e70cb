package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/ferdian3456/rosterbridge/internal/observability"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const APIKeyHeader = "X-API-Key"

// RoleBridge talks to the platform's role-management API. Every call fails soft: errors are
// logged and reported as false / empty results, never returned.
type RoleBridge struct {
	Log     *zap.Logger
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewRoleBridge(zap *zap.Logger, baseURL string, apiKey string, timeout time.Duration) *RoleBridge {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &RoleBridge{
		Log:     zap,
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Timeout: timeout,
	}
}

func (bridge *RoleBridge) AddRole(ctx context.Context, userId string, roleId string, guildId string) bool {
	return bridge.mutateRole(ctx, "add", userId, roleId, guildId)
}

func (bridge *RoleBridge) RemoveRole(ctx context.Context, userId string, roleId string, guildId string) bool {
	return bridge.mutateRole(ctx, "remove", userId, roleId, guildId)
}

// ResolveGuildId returns the guild that owns roleId.
func (bridge *RoleBridge) ResolveGuildId(ctx context.Context, roleId string) (string, bool) {
	log := observability.WithContext(ctx, bridge.Log)
	if ctx.Err() != nil {
		log.Warn("platform call skipped, context done", zap.String("action", "resolve_guild"), zap.String("role_id", roleId), zap.Error(ctx.Err()))
		return "", false
	}

	agent, err := bridge.newAgent(fiber.MethodGet, fmt.Sprintf("/roles/%s/guild", url.PathEscape(roleId)))
	if err != nil {
		log.Warn("failed to build platform request", zap.String("action", "resolve_guild"), zap.String("role_id", roleId), zap.Error(err))
		return "", false
	}

	response := model.PlatformGuildResponse{}
	code, _, errs := agent.Struct(&response)
	if len(errs) > 0 || code < 200 || code > 299 || response.GuildId == "" {
		log.Warn("failed to resolve guild for role",
			zap.String("action", "resolve_guild"),
			zap.String("role_id", roleId),
			zap.Int("status", code),
			zap.Errors("errors", errs),
		)
		return "", false
	}

	return response.GuildId, true
}

// ListRoles returns every role the user currently holds across guilds. ok is false when the
// platform could not be read, which callers must not confuse with "holds no roles".
func (bridge *RoleBridge) ListRoles(ctx context.Context, userId string) ([]model.PlatformRole, bool) {
	log := observability.WithContext(ctx, bridge.Log)
	if ctx.Err() != nil {
		log.Warn("platform call skipped, context done", zap.String("action", "list_roles"), zap.String("user_id", userId), zap.Error(ctx.Err()))
		return []model.PlatformRole{}, false
	}

	agent, err := bridge.newAgent(fiber.MethodGet, fmt.Sprintf("/users/%s/roles", url.PathEscape(userId)))
	if err != nil {
		log.Warn("failed to build platform request", zap.String("action", "list_roles"), zap.String("user_id", userId), zap.Error(err))
		return []model.PlatformRole{}, false
	}

	response := model.PlatformRolesResponse{}
	code, _, errs := agent.Struct(&response)
	if len(errs) > 0 || code < 200 || code > 299 {
		log.Warn("failed to list platform roles",
			zap.String("action", "list_roles"),
			zap.String("user_id", userId),
			zap.Int("status", code),
			zap.Errors("errors", errs),
		)
		return []model.PlatformRole{}, false
	}

	if response.Roles == nil {
		response.Roles = []model.PlatformRole{}
	}

	return response.Roles, true
}

func (bridge *RoleBridge) mutateRole(ctx context.Context, action string, userId string, roleId string, guildId string) bool {
	log := observability.WithContext(ctx, bridge.Log).With(
		zap.String("action", action),
		zap.String("user_id", userId),
		zap.String("role_id", roleId),
		zap.String("guild_id", guildId),
	)
	if ctx.Err() != nil {
		log.Warn("platform call skipped, context done", zap.Error(ctx.Err()))
		return false
	}

	agent, err := bridge.newAgent(fiber.MethodPost, "/roles/"+action)
	if err != nil {
		log.Warn("failed to build platform request", zap.Error(err))
		return false
	}

	agent.JSON(model.PlatformRoleMutation{
		UserId:  userId,
		RoleId:  roleId,
		GuildId: guildId,
	})

	code, _, errs := agent.Bytes()
	if len(errs) > 0 || code < 200 || code > 299 {
		log.Warn("platform role mutation failed", zap.Int("status", code), zap.Errors("errors", errs))
		return false
	}

	log.Debug("platform role mutation applied")

	return true
}

func (bridge *RoleBridge) newAgent(method string, path string) (*fiber.Agent, error) {
	agent := fiber.AcquireAgent()
	request := agent.Request()
	request.Header.SetMethod(method)
	request.SetRequestURI(bridge.BaseURL + path)

	agent.JSONEncoder(sonic.Marshal)
	agent.JSONDecoder(sonic.Unmarshal)
	agent.Set(APIKeyHeader, bridge.APIKey)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.Timeout(bridge.Timeout)

	err := agent.Parse()
	if err != nil {
		fiber.ReleaseAgent(agent)
		return nil, err
	}

	return agent, nil
}
