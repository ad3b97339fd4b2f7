package membergroup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/db/testutil"
)

func TestCreateParentRules(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	testutil.SeedGroups(t, db, 1, 2, 3, 4)
	testutil.SeedChild(t, db, 5, 4)

	testCases := []struct {
		name          string
		group         models.Membergroup
		expectedError error
	}{
		{
			name:  "top level",
			group: models.Membergroup{ID: 10, Name: "a", Parent: models.ParentTopLevel},
		},
		{
			name:  "inherits from stored top level group",
			group: models.Membergroup{ID: 11, Name: "b", Parent: 4},
		},
		{
			name:  "inherits from regular members",
			group: models.Membergroup{ID: 12, Name: "c", Parent: models.GroupUngrouped},
		},
		{
			name:          "administrator cannot be a parent",
			group:         models.Membergroup{ID: 13, Name: "d", Parent: models.GroupAdministrator},
			expectedError: ErrInvalidParent,
		},
		{
			name:          "moderators cannot be a parent",
			group:         models.Membergroup{ID: 14, Name: "e", Parent: models.GroupModerators},
			expectedError: ErrInvalidParent,
		},
		{
			name:          "inherited group cannot be a parent",
			group:         models.Membergroup{ID: 15, Name: "f", Parent: 5},
			expectedError: ErrInvalidParent,
		},
		{
			name:          "missing parent",
			group:         models.Membergroup{ID: 16, Name: "g", Parent: 99},
			expectedError: ErrInvalidParent,
		},
		{
			name:          "empty name",
			group:         models.Membergroup{ID: 17, Parent: models.ParentTopLevel},
			expectedError: ErrNameEmpty,
		},
		{
			name:          "reserved id",
			group:         models.Membergroup{ID: models.GroupGuest, Name: "h", Parent: models.ParentTopLevel},
			expectedError: ErrReservedID,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := tc.group
			err := Create(ctx, db, &g)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)

				return
			}

			require.NoError(t, err)

			stored, err := Get(ctx, db, g.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.group.Parent, stored.Parent)
		})
	}
}

func TestCreateAssignsID(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	testutil.SeedGroups(t, db, 1, 2, 3)

	g := models.Membergroup{Name: "new", Parent: models.ParentTopLevel}
	require.NoError(t, Create(ctx, db, &g))
	assert.Greater(t, int(g.ID), 3)

	inherited := models.Membergroup{Name: "regulars", Parent: models.GroupUngrouped}
	require.NoError(t, Create(ctx, db, &inherited))
	assert.Greater(t, int(inherited.ID), int(g.ID))

	stored, err := Get(ctx, db, inherited.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GroupUngrouped, stored.Parent)
}

func TestUpdateRejectsParentWithChildren(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	testutil.SeedGroups(t, db, 4, 6)
	testutil.SeedChild(t, db, 5, 4)

	g, err := Get(ctx, db, 4)
	require.NoError(t, err)

	g.Parent = 6
	require.ErrorIs(t, Update(ctx, db, g), ErrGroupHasChildren)

	g.Parent = models.ParentTopLevel
	g.Name = "renamed"
	require.NoError(t, Update(ctx, db, g))

	stored, err := Get(ctx, db, 4)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Name)

	missing := models.Membergroup{ID: 42, Name: "x", Parent: models.ParentTopLevel}
	require.ErrorIs(t, Update(ctx, db, &missing), ErrGroupNotFound)
}

func TestChildrenAndExists(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	testutil.SeedGroups(t, db, 4, 6)
	testutil.SeedChild(t, db, 5, 4)
	testutil.SeedChild(t, db, 7, 6)
	testutil.SeedChild(t, db, 8, models.GroupUngrouped)

	children, err := Children(ctx, db, []models.GroupID{4, 6})
	require.NoError(t, err)
	assert.Equal(t, []models.GroupID{5, 7}, children)

	children, err = Children(ctx, db, []models.GroupID{models.GroupUngrouped})
	require.NoError(t, err)
	assert.Equal(t, []models.GroupID{8}, children)

	children, err = Children(ctx, db, nil)
	require.NoError(t, err)
	assert.Empty(t, children)

	for id, want := range map[models.GroupID]bool{-1: true, 0: true, 4: true, 99: false} {
		ok, err := Exists(ctx, db, id)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "group %d", id)
	}
}

func TestDeleteCascade(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	testutil.SeedGroups(t, db, 1, 3, 4)
	testutil.SeedChild(t, db, 5, 4)
	testutil.Allow(t, db, 4, true, "view_stats")
	testutil.AllowBoard(t, db, 4, 1, true, "post_new")
	testutil.Allow(t, db, 5, true, "view_stats")

	member := models.Member{
		Name:             "alice",
		Email:            "alice@example.com",
		PrimaryGroup:     4,
		AdditionalGroups: []models.AdditionalGroup{{GroupID: 4}, {GroupID: 1}},
	}
	require.NoError(t, db.Create(&member).Error)
	require.NoError(t, db.Create(&models.BoardModeratorGroup{BoardID: 1, GroupID: 4}).Error)

	require.NoError(t, Delete(ctx, db, 4))

	_, err := Get(ctx, db, 4)
	require.ErrorIs(t, err, ErrGroupNotFound)

	var m models.Member
	require.NoError(t, db.Preload("AdditionalGroups").First(&m, member.ID).Error)
	assert.Equal(t, models.GroupUngrouped, m.PrimaryGroup)
	assert.Equal(t, []models.GroupID{models.GroupUngrouped, models.GroupAdministrator}, m.Groups())

	var count int64
	db.Model(&models.Permission{}).Where("group_id = ?", 4).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.BoardPermission{}).Where("group_id = ?", 4).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.BoardModeratorGroup{}).Count(&count)
	assert.Zero(t, count)

	child, err := Get(ctx, db, 5)
	require.NoError(t, err)
	assert.False(t, child.IsInherited())

	db.Model(&models.Permission{}).Where("group_id = ?", 5).Count(&count)
	assert.Equal(t, int64(1), count, "detached child keeps its rows")
}

func TestDeleteProtected(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	testutil.SeedGroups(t, db, 1, 3)

	for _, id := range []models.GroupID{models.GroupGuest, models.GroupUngrouped, models.GroupAdministrator, models.GroupModerators} {
		require.ErrorIs(t, Delete(ctx, db, id), ErrProtectedGroup)
	}

	require.ErrorIs(t, Delete(ctx, db, 42), ErrGroupNotFound)
	require.ErrorIs(t, Delete(ctx, nil, 42), ErrDBNil)
}

func TestParents(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	testutil.SeedGroups(t, db, 1, 4, 6)
	testutil.SeedChild(t, db, 5, 4)
	testutil.SeedChild(t, db, 7, 6)
	testutil.SeedChild(t, db, 8, 4)

	parents, err := Parents(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []models.GroupID{4, 6}, parents)

	_, err = Parents(ctx, nil)
	require.ErrorIs(t, err, ErrDBNil)
}
