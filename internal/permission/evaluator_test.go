package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryBB/permissions/internal/db/controller/board"
	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/db/testutil"
)

func TestDecide(t *testing.T) {
	testCases := []struct {
		name     string
		flags    []bool
		expected bool
	}{
		{name: "no rows", expected: false},
		{name: "single allow", flags: []bool{true}, expected: true},
		{name: "single deny", flags: []bool{false}, expected: false},
		{name: "deny after allow", flags: []bool{true, true, false}, expected: false},
		{name: "deny before allow", flags: []bool{false, true}, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Decide(tc.flags))
		})
	}
}

func TestAllowedForumWide(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	testutil.SeedGroups(t, db, 4, 5)
	testutil.Allow(t, db, 4, true, "view_stats", "pm_read")
	testutil.Allow(t, db, 5, false, "pm_read")
	testutil.Allow(t, db, models.GroupGuest, true, "who_view", "admin_forum")

	eval := NewEvaluator(db, nil)

	testCases := []struct {
		name       string
		subject    Subject
		permission string
		expected   bool
	}{
		{name: "allow row", subject: Subject{MemberID: 2, PrimaryGroup: 4}, permission: "view_stats", expected: true},
		{name: "no row", subject: Subject{MemberID: 2, PrimaryGroup: 4}, permission: "who_view", expected: false},
		{
			name:       "deny in additional group wins",
			subject:    Subject{MemberID: 2, PrimaryGroup: 4, AdditionalGroups: []models.GroupID{5}},
			permission: "pm_read",
			expected:   false,
		},
		{
			name:       "allow in additional group",
			subject:    Subject{MemberID: 2, PrimaryGroup: models.GroupUngrouped, AdditionalGroups: []models.GroupID{4}},
			permission: "view_stats",
			expected:   true,
		},
		{name: "administrator", subject: admin(), permission: "anything_at_all", expected: true},
		{
			name:       "administrator as additional group",
			subject:    Subject{MemberID: 3, PrimaryGroup: 5, AdditionalGroups: []models.GroupID{1}},
			permission: "pm_read",
			expected:   true,
		},
		{name: "guest allow row", subject: Guest(), permission: "who_view", expected: true},
		{name: "guest never holds non guest permissions", subject: Guest(), permission: "admin_forum", expected: false},
		{name: "group without rows", subject: Subject{PrimaryGroup: 42}, permission: "view_stats", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := eval.Allowed(ctx, tc.subject, tc.permission, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ok)
		})
	}
}

func TestAllowedOnBoard(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	testutil.SeedGroups(t, db, 4, 6)
	require.NoError(t, db.Create(&models.PermissionProfile{ID: 5, Name: "custom"}).Error)

	require.NoError(t, board.Create(ctx, db, &models.Board{ID: 1, Name: "default"}))
	require.NoError(t, board.Create(ctx, db, &models.Board{ID: 2, Name: "custom", ProfileID: 5}))
	require.NoError(t, db.Create(&models.Board{ID: 3, Name: "dangling", ProfileID: 77}).Error)

	testutil.AllowBoard(t, db, 4, 1, true, "post_new")
	testutil.AllowBoard(t, db, 4, 5, false, "post_new")
	testutil.AllowBoard(t, db, models.GroupModerators, 1, true, "approve_posts")
	testutil.AllowBoard(t, db, models.GroupModerators, 5, true, "approve_posts")
	testutil.Allow(t, db, 4, true, "view_stats")

	require.NoError(t, board.AddModeratorGroup(ctx, db, 1, 6))
	require.NoError(t, board.AddModerator(ctx, db, 2, 20))

	eval := NewEvaluator(db, NewMemoryCache(0))
	member := Subject{MemberID: 10, PrimaryGroup: 4}

	testCases := []struct {
		name       string
		subject    Subject
		permission string
		board      uint
		expected   bool
	}{
		{name: "default profile", subject: member, permission: "post_new", board: 1, expected: true},
		{name: "custom profile deny", subject: member, permission: "post_new", board: 2, expected: false},
		{name: "missing profile falls back", subject: member, permission: "post_new", board: 3, expected: true},
		{name: "missing board falls back", subject: member, permission: "post_new", board: 99, expected: true},
		{name: "forum permission on a board", subject: member, permission: "view_stats", board: 2, expected: true},
		{
			name:       "moderator group inherits moderators rows",
			subject:    Subject{MemberID: 11, PrimaryGroup: 6},
			permission: "approve_posts",
			board:      1,
			expected:   true,
		},
		{
			name:       "moderator group only on its board",
			subject:    Subject{MemberID: 11, PrimaryGroup: 6},
			permission: "approve_posts",
			board:      2,
			expected:   false,
		},
		{
			name:       "listed member moderator",
			subject:    Subject{MemberID: 20, PrimaryGroup: models.GroupUngrouped},
			permission: "approve_posts",
			board:      2,
			expected:   true,
		},
		{
			name:       "not a moderator",
			subject:    member,
			permission: "approve_posts",
			board:      1,
			expected:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := eval.Allowed(ctx, tc.subject, tc.permission, boardPtr(tc.board))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ok)
		})
	}
}

func TestModeratorGroupScenario(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	testutil.SeedGroups(t, db, 8)
	require.NoError(t, board.Create(ctx, db, &models.Board{ID: 1, Name: "b"}))
	require.NoError(t, board.AddModeratorGroup(ctx, db, 1, 8))
	testutil.AllowBoard(t, db, models.GroupModerators, 1, true, "approve_posts")

	ok, err := NewEvaluator(db, nil).AllowedGroups(ctx, []models.GroupID{8}, "approve_posts", boardPtr(1))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllowedAnyAll(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	testutil.SeedGroups(t, db, 4)
	testutil.Allow(t, db, 4, true, "view_stats")

	eval := NewEvaluator(db, nil)
	s := Subject{MemberID: 2, PrimaryGroup: 4}

	ok, err := eval.AllowedAny(ctx, s, []string{"who_view", "view_stats"}, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = eval.AllowedAll(ctx, s, []string{"who_view", "view_stats"}, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = eval.AllowedAny(ctx, s, nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPermissionsListing(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	testutil.SeedGroups(t, db, 4, 5)
	require.NoError(t, board.Create(ctx, db, &models.Board{ID: 1, Name: "b"}))
	testutil.Allow(t, db, 4, true, "view_stats", "pm_read")
	testutil.Allow(t, db, 5, false, "pm_read")
	testutil.AllowBoard(t, db, 4, 1, true, "post_new", "poll_vote")
	testutil.AllowBoard(t, db, 5, 1, false, "poll_vote")
	testutil.Allow(t, db, models.GroupGuest, true, "view_stats", "pm_send")

	eval := NewEvaluator(db, nil)

	perms, err := eval.Permissions(ctx, Subject{MemberID: 2, PrimaryGroup: 4, AdditionalGroups: []models.GroupID{5}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"view_stats"}, perms)

	perms, err = eval.Permissions(ctx, Subject{MemberID: 2, PrimaryGroup: 4, AdditionalGroups: []models.GroupID{5}}, boardPtr(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"post_new", "view_stats"}, perms)

	perms, err = eval.Permissions(ctx, Guest(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"view_stats"}, perms)

	perms, err = eval.Permissions(ctx, admin(), boardPtr(1))
	require.NoError(t, err)
	assert.Len(t, perms, len(Names(CategoryMembergroup))+len(Names(CategoryBoard)))
}

func TestEvaluatorCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	testutil.SeedGroups(t, db, 4)
	testutil.Allow(t, db, 4, true, "view_stats")

	cache := NewMemoryCache(0)
	eval := NewEvaluator(db, cache)
	s := Subject{MemberID: 2, PrimaryGroup: 4}

	ok, err := eval.Allowed(ctx, s, "view_stats", nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, cache.Len())

	require.NoError(t, db.Where("group_id = ?", 4).Delete(&models.Permission{}).Error)

	ok, err = eval.Allowed(ctx, s, "view_stats", nil)
	require.NoError(t, err)
	assert.True(t, ok, "stale until invalidated")

	eval.Invalidate(ctx)
	assert.Zero(t, cache.Len())

	ok, err = eval.Allowed(ctx, s, "view_stats", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
