package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sergeant := f.ranks[4]

	limit, err := f.capacity.EffectiveLimit(ctx, sergeant.Id, nil)
	require.NoError(t, err)
	assert.Nil(t, limit, "no limits configured means unlimited")

	f.setRankLimit(4, 5)
	limit, err = f.capacity.EffectiveLimit(ctx, sergeant.Id, &f.swat.Id)
	require.NoError(t, err)
	require.NotNil(t, limit)
	assert.Equal(t, 5, *limit, "department limit applies when the team has no override")

	f.setTeamLimit(f.swat, 4, 2)
	limit, err = f.capacity.EffectiveLimit(ctx, sergeant.Id, &f.swat.Id)
	require.NoError(t, err)
	require.NotNil(t, limit)
	assert.Equal(t, 2, *limit, "team override wins")

	limit, err = f.capacity.EffectiveLimit(ctx, sergeant.Id, &f.patrol.Id)
	require.NoError(t, err)
	require.NotNil(t, limit)
	assert.Equal(t, 5, *limit)
}

func TestCurrentCountScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addMember("u-1", 4, &f.swat)
	f.addMember("u-2", 4, &f.patrol)
	f.addMember("u-3", 4, nil)

	count, err := f.capacity.CurrentCount(ctx, f.ranks[4].Id, &f.swat.Id)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "department-wide without a team override")

	f.setTeamLimit(f.swat, 4, 2)
	count, err = f.capacity.CurrentCount(ctx, f.ranks[4].Id, &f.swat.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "team-scoped once an override exists")
}

func TestValidateCapacityInvariant(t *testing.T) {
	for holders := 0; holders <= 3; holders++ {
		t.Run(fmt.Sprintf("%d holders", holders), func(t *testing.T) {
			f := newFixture(t)
			f.setRankLimit(4, 2)
			for i := 0; i < holders; i++ {
				f.addMember(fmt.Sprintf("holder-%d", i), 4, nil)
			}

			check, err := f.capacity.Validate(context.Background(), f.ranks[4].Id, f.department.Id, nil)
			require.NoError(t, err)

			assert.Equal(t, holders < 2, check.CanPromote)
			assert.Equal(t, holders, check.CurrentCount)
			require.NotNil(t, check.DepartmentLimit)
			assert.Equal(t, 2, *check.DepartmentLimit)
			assert.Nil(t, check.TeamLimit)
			if holders >= 2 {
				assert.Contains(t, check.Reason, fmt.Sprintf("%d/2", holders))
			}
		})
	}
}

func TestValidateUnlimited(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 10; i++ {
		f.addMember(fmt.Sprintf("holder-%d", i), 2, nil)
	}

	check, err := f.capacity.Validate(context.Background(), f.ranks[2].Id, f.department.Id, &f.patrol.Id)
	require.NoError(t, err)
	assert.True(t, check.CanPromote)
	assert.Nil(t, check.DepartmentLimit)
	assert.Nil(t, check.TeamLimit)
	assert.Equal(t, 10, check.CurrentCount)
}

func TestValidateRankFromOtherDepartment(t *testing.T) {
	f := newFixture(t)

	_, err := f.capacity.Validate(context.Background(), f.ranks[3].Id, uuid.New(), nil)
	assert.Equal(t, constant.ERR_NOT_FOUND_ERROR, appCode(t, err))
}

func TestCapacityInfo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.setRankLimit(3, 3)
	f.setTeamLimit(f.swat, 4, 1)
	f.addMember("u-1", 3, &f.swat)
	f.addMember("u-2", 3, &f.patrol)
	f.addMember("u-3", 4, &f.swat)
	f.addMember("u-4", 4, &f.patrol)

	infos, err := f.capacity.Info(ctx, f.department.Id, &f.swat.Id)
	require.NoError(t, err)
	require.Len(t, infos, 6)

	byLevel := map[int]int{}
	for i, info := range infos {
		byLevel[info.Level] = i
	}

	corporal := infos[byLevel[3]]
	require.NotNil(t, corporal.Limit)
	assert.Equal(t, 3, *corporal.Limit)
	assert.Equal(t, 2, corporal.CurrentCount, "department limit counts the whole department")
	require.NotNil(t, corporal.AvailableSlots)
	assert.Equal(t, 1, *corporal.AvailableSlots)
	assert.False(t, corporal.AtCapacity)

	sergeant := infos[byLevel[4]]
	require.NotNil(t, sergeant.Limit)
	assert.Equal(t, 1, *sergeant.Limit)
	assert.Equal(t, 1, sergeant.CurrentCount, "team override counts only the team")
	assert.Equal(t, 0, *sergeant.AvailableSlots)
	assert.True(t, sergeant.AtCapacity)

	cadet := infos[byLevel[1]]
	assert.Nil(t, cadet.Limit)
	assert.Nil(t, cadet.AvailableSlots)
	assert.False(t, cadet.AtCapacity)

	_, err = f.capacity.Info(ctx, uuid.New(), nil)
	assert.Equal(t, constant.ERR_NOT_FOUND_ERROR, appCode(t, err))
}
