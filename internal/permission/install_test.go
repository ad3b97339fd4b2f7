package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/db/testutil"
)

func TestInstall(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	ok, err := Install(ctx, db)
	require.NoError(t, err)
	require.True(t, ok)

	for name := range forumRows(t, db, models.GroupGuest) {
		assert.False(t, IsGuestIllegal(name), name)
	}

	assert.Empty(t, forumRows(t, db, models.GroupModerators))
	assert.Contains(t, boardRows(t, db, models.GroupModerators, models.ProfileDefault), "approve_posts")

	for name := range boardRows(t, db, models.GroupUngrouped, models.ProfileReadOnly) {
		assert.Contains(t, profileLocked, name)
	}

	e := NewEvaluator(db, nil)
	b := uint(1)
	require.NoError(t, db.Create(&models.Board{ID: b, Name: "replies", ProfileID: models.ProfileReplyOnly}).Error)

	member := Subject{MemberID: 2, PrimaryGroup: models.GroupUngrouped}

	allowed, err := e.Allowed(ctx, member, "post_new", &b)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = e.Allowed(ctx, member, "post_reply_any", &b)
	require.NoError(t, err)
	assert.True(t, allowed)

	ok, err = Install(ctx, db)
	require.NoError(t, err)
	assert.False(t, ok, "second install is a no-op")
}

func TestInstallSkipsConfiguredForum(t *testing.T) {
	db := setupTestDB(t)
	testutil.AllowBoard(t, db, 4, models.ProfileDefault, false, "post_new")

	ok, err := Install(context.Background(), db)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, forumRows(t, db, models.GroupUngrouped))
}
