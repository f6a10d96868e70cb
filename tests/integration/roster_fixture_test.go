package integration

import (
	"context"
	"testing"

	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/ferdian3456/rosterbridge/tests/integration/setup"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const guildId = "guild-1"

type roster struct {
	app          *setup.TestApp
	departmentId uuid.UUID
	officer      uuid.UUID
	sergeant     uuid.UUID
	chief        uuid.UUID
	patrol       uuid.UUID
	chiefMember  uuid.UUID
	chiefToken   string
}

func startRoster(t *testing.T) *roster {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	t.Log("=== Starting Test Infrastructure ===")
	infra, err := setup.StartInfra(ctx, t)
	require.NoError(t, err, "infrastructure should start successfully")
	t.Cleanup(func() { _ = infra.Terminate(ctx, t) })

	t.Log("=== Running Database Migrations ===")
	require.NoError(t, setup.RunMigration(infra.PgURL, t))

	t.Log("=== Setting Up Test Application ===")
	app := setup.SetupTestApp(t, infra)

	guild := guildId
	r := &roster{app: app}
	r.departmentId = setup.SeedDepartment(t, app.DB, "Police", &guild)

	allCapabilities := model.CapabilityViewMembers | model.CapabilityManageMembers | model.CapabilityPromoteMembers |
		model.CapabilityDemoteMembers | model.CapabilityManageRanks | model.CapabilityManageTeams | model.CapabilityViewReports
	sergeantLimit := 1

	r.officer = setup.SeedRank(t, app.DB, r.departmentId, "Officer", 2, "role-officer", nil, model.CapabilityViewMembers)
	r.sergeant = setup.SeedRank(t, app.DB, r.departmentId, "Sergeant", 4, "role-sergeant", &sergeantLimit, model.CapabilityViewMembers)
	r.chief = setup.SeedRank(t, app.DB, r.departmentId, "Chief", 6, "role-chief", nil, allCapabilities)
	r.patrol = setup.SeedTeam(t, app.DB, r.departmentId, "Patrol", "role-team-patrol")

	for _, role := range []string{"role-officer", "role-sergeant", "role-chief", "role-team-patrol"} {
		app.Platform.RegisterRole(role, guildId)
	}

	r.chiefMember = r.addMember(t, "chief-1", &r.chief, "role-chief")
	r.chiefToken = setup.AccessToken(t, "chief-1")

	return r
}

// addMember seeds a member at rankId and grants the matching platform role.
func (r *roster) addMember(t *testing.T, userId string, rankId *uuid.UUID, roleId string) uuid.UUID {
	memberId := setup.SeedMember(t, r.app.DB, userId, r.departmentId, rankId, nil)
	if roleId != "" {
		r.app.Platform.Grant(userId, roleId)
	}
	return memberId
}
