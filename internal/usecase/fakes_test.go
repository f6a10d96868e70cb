package usecase

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func notFound(message string) error {
	return &model.AppError{Code: constant.ERR_NOT_FOUND_ERROR, Message: message}
}

// fakeStore backs DepartmentStore, MemberStore and PromotionStore in memory.
type fakeStore struct {
	mu              sync.Mutex
	departments     map[uuid.UUID]model.Department
	ranks           map[uuid.UUID]model.Rank
	teams           map[uuid.UUID]model.Team
	teamLimits      map[[2]uuid.UUID]int
	members         map[uuid.UUID]model.Member
	teamMemberships []model.TeamMembership
	history         []model.PromotionHistory
	rankWrites      int
	teamWrites      int
	historyErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		departments: map[uuid.UUID]model.Department{},
		ranks:       map[uuid.UUID]model.Rank{},
		teams:       map[uuid.UUID]model.Team{},
		teamLimits:  map[[2]uuid.UUID]int{},
		members:     map[uuid.UUID]model.Member{},
	}
}

func (s *fakeStore) GetDepartment(_ context.Context, departmentId uuid.UUID) (model.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	department, ok := s.departments[departmentId]
	if !ok {
		return model.Department{}, notFound("Department not found")
	}
	return department, nil
}

func (s *fakeStore) GetRank(_ context.Context, rankId uuid.UUID) (model.Rank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rank, ok := s.ranks[rankId]
	if !ok {
		return model.Rank{}, notFound("Rank not found")
	}
	return rank, nil
}

func (s *fakeStore) ListActiveRanks(_ context.Context, departmentId uuid.UUID) ([]model.Rank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ranks := []model.Rank{}
	for _, rank := range s.ranks {
		if rank.DepartmentId == departmentId && rank.IsActive {
			ranks = append(ranks, rank)
		}
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i].Level < ranks[j].Level })
	return ranks, nil
}

func (s *fakeStore) GetTeam(_ context.Context, teamId uuid.UUID) (model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[teamId]
	if !ok {
		return model.Team{}, notFound("Team not found")
	}
	return team, nil
}

func (s *fakeStore) ListActiveTeams(_ context.Context, departmentId uuid.UUID) ([]model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	teams := []model.Team{}
	for _, team := range s.teams {
		if team.DepartmentId == departmentId && team.IsActive {
			teams = append(teams, team)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].CreateDatetime.Before(teams[j].CreateDatetime) })
	return teams, nil
}

func (s *fakeStore) GetTeamRankLimit(_ context.Context, teamId uuid.UUID, rankId uuid.UUID) (*int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit, ok := s.teamLimits[[2]uuid.UUID{teamId, rankId}]
	if !ok {
		return nil, nil
	}
	return &limit, nil
}

func (s *fakeStore) ListTeamRankLimits(_ context.Context, teamId uuid.UUID) (map[uuid.UUID]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limits := map[uuid.UUID]int{}
	for key, limit := range s.teamLimits {
		if key[0] == teamId {
			limits[key[1]] = limit
		}
	}
	return limits, nil
}

func (s *fakeStore) GetMember(_ context.Context, memberId uuid.UUID) (model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[memberId]
	if !ok {
		return model.Member{}, notFound("Member not found")
	}
	return member, nil
}

func (s *fakeStore) GetMemberByUser(_ context.Context, userId string, departmentId uuid.UUID) (model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, member := range s.members {
		if member.UserId == userId && member.DepartmentId == departmentId {
			return member, nil
		}
	}
	return model.Member{}, notFound("Member not found")
}

func (s *fakeStore) ListActiveMemberships(_ context.Context, userId string, departmentId *uuid.UUID) ([]model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := []model.Member{}
	for _, member := range s.members {
		if member.UserId != userId || !member.HoldsRoles() {
			continue
		}
		if departmentId != nil && member.DepartmentId != *departmentId {
			continue
		}
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].CreateDatetime.Before(members[j].CreateDatetime) })
	return members, nil
}

func (s *fakeStore) ListActiveDepartmentMembers(_ context.Context, departmentId uuid.UUID) ([]model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := []model.Member{}
	for _, member := range s.members {
		if member.DepartmentId == departmentId && member.HoldsRoles() {
			members = append(members, member)
		}
	}
	return members, nil
}

func (s *fakeStore) UpdateMemberRank(_ context.Context, memberId uuid.UUID, rankId *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[memberId]
	if !ok {
		return notFound("Member not found")
	}
	member.RankId = rankId
	s.members[memberId] = member
	s.rankWrites++
	return nil
}

func (s *fakeStore) ReplacePrimaryTeam(_ context.Context, memberId uuid.UUID, oldTeamId *uuid.UUID, newTeamId *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[memberId]
	if !ok {
		return notFound("Member not found")
	}
	member.PrimaryTeamId = newTeamId
	s.members[memberId] = member
	s.teamWrites++

	kept := []model.TeamMembership{}
	exists := false
	for _, membership := range s.teamMemberships {
		if membership.MemberId == memberId && oldTeamId != nil && membership.TeamId == *oldTeamId {
			continue
		}
		if membership.MemberId == memberId && newTeamId != nil && membership.TeamId == *newTeamId {
			exists = true
		}
		kept = append(kept, membership)
	}
	if newTeamId != nil && !exists {
		kept = append(kept, model.TeamMembership{Id: uuid.New(), MemberId: memberId, TeamId: *newTeamId, CreateDatetime: time.Now()})
	}
	s.teamMemberships = kept
	return nil
}

func (s *fakeStore) UpdateMemberStatus(_ context.Context, memberId uuid.UUID, status model.MemberStatus, isActive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[memberId]
	if !ok {
		return notFound("Member not found")
	}
	member.Status = status
	member.IsActive = isActive
	s.members[memberId] = member
	return nil
}

func (s *fakeStore) DeleteMember(_ context.Context, memberId uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, memberId)
	kept := []model.TeamMembership{}
	for _, membership := range s.teamMemberships {
		if membership.MemberId != memberId {
			kept = append(kept, membership)
		}
	}
	s.teamMemberships = kept
	for i := range s.history {
		if model.SameUUID(s.history[i].MemberId, &memberId) {
			s.history[i].MemberId = nil
		}
	}
	return nil
}

func (s *fakeStore) CountActiveByRank(_ context.Context, rankId uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, member := range s.members {
		if member.IsActive && member.RankId != nil && *member.RankId == rankId {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) CountActiveByRankInTeam(_ context.Context, rankId uuid.UUID, teamId uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, member := range s.members {
		if member.IsActive && member.RankId != nil && *member.RankId == rankId &&
			member.PrimaryTeamId != nil && *member.PrimaryTeamId == teamId {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) ListTeamMemberships(_ context.Context, memberId uuid.UUID) ([]model.TeamMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	memberships := []model.TeamMembership{}
	for _, membership := range s.teamMemberships {
		if membership.MemberId == memberId {
			memberships = append(memberships, membership)
		}
	}
	return memberships, nil
}

func (s *fakeStore) CreatePromotionHistory(_ context.Context, entry model.PromotionHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyErr != nil {
		return s.historyErr
	}
	s.history = append(s.history, entry)
	return nil
}

func (s *fakeStore) ListByMember(_ context.Context, memberId uuid.UUID) ([]model.PromotionHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := []model.PromotionHistory{}
	for i := len(s.history) - 1; i >= 0; i-- {
		if model.SameUUID(s.history[i].MemberId, &memberId) {
			entries = append(entries, s.history[i])
		}
	}
	return entries, nil
}

func (s *fakeStore) ListByDepartment(_ context.Context, departmentId uuid.UUID) ([]model.PromotionHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := []model.PromotionHistory{}
	for _, entry := range s.history {
		if entry.DepartmentId == departmentId {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *fakeStore) member(t *testing.T, memberId uuid.UUID) model.Member {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[memberId]
	require.True(t, ok, "member %s not in store", memberId)
	return member
}

// fakeBridge keeps per-user role assignments. With apply set, successful mutations change them.
type fakeBridge struct {
	mu          sync.Mutex
	roles       map[string][]model.PlatformRole
	guilds      map[string]string
	failRoles   map[string]bool
	listFails   bool
	addFails    bool
	removeFails bool
	apply       bool
	added       []string
	removed     []string
	listCalls   int
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		roles:     map[string][]model.PlatformRole{},
		guilds:    map[string]string{},
		failRoles: map[string]bool{},
		apply:     true,
	}
}

func (b *fakeBridge) grant(userId string, roleId string, guildId string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roles[userId] = append(b.roles[userId], model.PlatformRole{RoleId: roleId, GuildId: guildId})
}

func (b *fakeBridge) held(userId string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	roleIds := []string{}
	for _, role := range b.roles[userId] {
		roleIds = append(roleIds, role.RoleId)
	}
	sort.Strings(roleIds)
	return roleIds
}

func (b *fakeBridge) AddRole(ctx context.Context, userId string, roleId string, guildId string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ctx.Err() != nil || b.addFails || b.failRoles[roleId] {
		return false
	}
	b.added = append(b.added, roleId)
	if b.apply {
		b.roles[userId] = append(b.roles[userId], model.PlatformRole{RoleId: roleId, GuildId: guildId})
	}
	return true
}

func (b *fakeBridge) RemoveRole(ctx context.Context, userId string, roleId string, guildId string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ctx.Err() != nil || b.removeFails || b.failRoles[roleId] {
		return false
	}
	b.removed = append(b.removed, roleId)
	if b.apply {
		kept := []model.PlatformRole{}
		for _, role := range b.roles[userId] {
			if role.RoleId != roleId || role.GuildId != guildId {
				kept = append(kept, role)
			}
		}
		b.roles[userId] = kept
	}
	return true
}

func (b *fakeBridge) ResolveGuildId(ctx context.Context, roleId string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	guildId, ok := b.guilds[roleId]
	if ctx.Err() != nil || !ok {
		return "", false
	}
	return guildId, true
}

func (b *fakeBridge) ListRoles(ctx context.Context, userId string) ([]model.PlatformRole, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++
	if ctx.Err() != nil || b.listFails {
		return []model.PlatformRole{}, false
	}
	roles := make([]model.PlatformRole, len(b.roles[userId]))
	copy(roles, b.roles[userId])
	return roles, true
}

type countingBarrier struct {
	calls  int
	onWait func()
}

func (b *countingBarrier) Wait() {
	b.calls++
	if b.onWait != nil {
		b.onWait()
	}
}

type fakeArchive struct {
	objects map[string][]byte
	err     error
}

func (a *fakeArchive) Bucket() string {
	return "rosterbridge-test"
}

func (a *fakeArchive) PutJSON(_ context.Context, objectKey string, data []byte) error {
	if a.err != nil {
		return a.err
	}
	a.objects[objectKey] = data
	return nil
}

const testGuild = "guild-1"

// fixture is one department with ranks at levels 1..6 and two teams. Levels 5 and 6 carry every
// capability, level 4 may promote and demote, lower levels may only view.
type fixture struct {
	store      *fakeStore
	bridge     *fakeBridge
	barrier    *countingBarrier
	archive    *fakeArchive
	department model.Department
	ranks      map[int]model.Rank
	patrol     model.Team
	swat       model.Team
	authorizer *Authorizer
	capacity   *CapacityUsecase
	reconciler *ReconcileUsecase
	lifecycle  *LifecycleUsecase
	promotion  *PromotionUsecase
	history    *HistoryUsecase
	clock      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := zap.NewNop()
	store := newFakeStore()
	bridge := newFakeBridge()
	guild := testGuild

	f := &fixture{
		store:   store,
		bridge:  bridge,
		barrier: &countingBarrier{},
		archive: &fakeArchive{objects: map[string][]byte{}},
		ranks:   map[int]model.Rank{},
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	f.department = model.Department{Id: uuid.New(), Name: "Police", GuildId: &guild, IsActive: true}
	store.departments[f.department.Id] = f.department

	names := map[int]string{1: "Cadet", 2: "Officer", 3: "Corporal", 4: "Sergeant", 5: "Lieutenant", 6: "Chief"}
	for level := 1; level <= 6; level++ {
		roleId := "role-rank-" + names[level]
		permissions := model.CapabilityViewMembers
		switch {
		case level >= 5:
			permissions = model.CapabilityViewMembers | model.CapabilityManageMembers | model.CapabilityPromoteMembers |
				model.CapabilityDemoteMembers | model.CapabilityManageRanks | model.CapabilityManageTeams | model.CapabilityViewReports
		case level == 4:
			permissions = model.CapabilityViewMembers | model.CapabilityPromoteMembers | model.CapabilityDemoteMembers
		}
		rank := model.Rank{
			Id:           uuid.New(),
			DepartmentId: f.department.Id,
			Name:         names[level],
			Level:        level,
			RoleId:       &roleId,
			Permissions:  permissions,
			IsActive:     true,
		}
		store.ranks[rank.Id] = rank
		f.ranks[level] = rank
	}

	patrolRole := "role-team-patrol"
	swatRole := "role-team-swat"
	f.patrol = model.Team{Id: uuid.New(), DepartmentId: f.department.Id, Name: "Patrol", RoleId: &patrolRole, IsActive: true, CreateDatetime: f.tick()}
	f.swat = model.Team{Id: uuid.New(), DepartmentId: f.department.Id, Name: "SWAT", RoleId: &swatRole, IsActive: true, CreateDatetime: f.tick()}
	store.teams[f.patrol.Id] = f.patrol
	store.teams[f.swat.Id] = f.swat

	f.authorizer = NewAuthorizer(store, store)
	f.capacity = NewCapacityUsecase(store, store, log)
	f.reconciler = NewReconcileUsecase(store, store, bridge, f.authorizer, log)
	f.lifecycle = NewLifecycleUsecase(store, store, bridge, f.authorizer, log)
	f.promotion = NewPromotionUsecase(store, store, store, bridge, f.capacity, f.reconciler, f.authorizer, f.barrier, log)
	f.history = NewHistoryUsecase(store, store, store, f.archive, f.authorizer, log)
	f.history.Now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	return f
}

func (f *fixture) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

// addMember stores an active member at the given rank level (0 for none) and grants the matching
// platform roles.
func (f *fixture) addMember(userId string, level int, team *model.Team) model.Member {
	member := model.Member{
		Id:             uuid.New(),
		UserId:         userId,
		DepartmentId:   f.department.Id,
		Status:         model.MemberStatusActive,
		IsActive:       true,
		CreateDatetime: f.tick(),
	}

	if level > 0 {
		rank := f.ranks[level]
		member.RankId = &rank.Id
		f.bridge.grant(userId, *rank.RoleId, testGuild)
	}

	if team != nil {
		member.PrimaryTeamId = &team.Id
		f.bridge.grant(userId, *team.RoleId, testGuild)
		f.store.teamMemberships = append(f.store.teamMemberships, model.TeamMembership{
			Id: uuid.New(), MemberId: member.Id, TeamId: team.Id, CreateDatetime: f.tick(),
		})
	}

	f.store.members[member.Id] = member
	return member
}

func (f *fixture) setTeamLimit(team model.Team, level int, limit int) {
	f.store.teamLimits[[2]uuid.UUID{team.Id, f.ranks[level].Id}] = limit
}

func (f *fixture) setRankLimit(level int, limit int) {
	rank := f.ranks[level]
	rank.MaxMembers = &limit
	f.ranks[level] = rank
	f.store.ranks[rank.Id] = rank
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func ptr[T any](v T) *T {
	return &v
}

func (b *fakeBridge) removeFromUser(userId string, roleId string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := []model.PlatformRole{}
	for _, role := range b.roles[userId] {
		if role.RoleId != roleId {
			kept = append(kept, role)
		}
	}
	b.roles[userId] = kept
}

func newID() uuid.UUID {
	return uuid.New()
}
