package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardStandardLevel(t *testing.T) {
	lvl, ok := ForumLevelRows(LevelStandard)
	require.True(t, ok)

	assert.ElementsMatch(t, []string{
		"poll_view", "post_new", "post_reply_own", "post_reply_any", "delete_own", "modify_own",
		"report_any", "poll_vote", "poll_edit_own", "poll_post", "poll_add_own", "post_attachment",
		"lock_own", "remove_own", "view_attachments",
	}, lvl.Board)
}

func TestForumLevelsNest(t *testing.T) {
	levels := []Level{LevelRestrict, LevelStandard, LevelModerator, LevelMaintenance}

	for i := 1; i < len(levels); i++ {
		lower, ok := ForumLevelRows(levels[i-1])
		require.True(t, ok)

		upper, ok := ForumLevelRows(levels[i])
		require.True(t, ok)

		assert.Subset(t, upper.Forum, lower.Forum, "%s forum rows", levels[i])
		assert.Subset(t, upper.Board, lower.Board, "%s board rows", levels[i])
	}

	moderator, _ := ForumLevelRows(LevelModerator)
	maintenance, _ := ForumLevelRows(LevelMaintenance)
	assert.Equal(t, moderator.Board, maintenance.Board)
	assert.Contains(t, maintenance.Forum, "admin_forum")
	assert.Contains(t, maintenance.Forum, "profile_displayed_name_any")
	assert.Len(t, maintenance.Forum, 38)
}

func TestForumRestrictLevel(t *testing.T) {
	lvl, ok := ForumLevelRows(LevelRestrict)
	require.True(t, ok)

	assert.Equal(t, []string{"search_posts", "view_stats", "who_view", "profile_identity_own"}, lvl.Forum)
	assert.Equal(t, []string{
		"poll_view", "post_new", "post_reply_own", "post_reply_any", "delete_own", "modify_own", "report_any",
	}, lvl.Board)
}

func TestProfileLevels(t *testing.T) {
	standard, ok := ProfileLevelRows(LevelProfileStandard)
	require.True(t, ok)
	assert.Empty(t, standard)

	locked, ok := ProfileLevelRows(LevelLocked)
	require.True(t, ok)
	assert.Equal(t, []string{"poll_view", "report_any", "view_attachments"}, locked)

	publish, ok := ProfileLevelRows(LevelPublish)
	require.True(t, ok)
	assert.Len(t, publish, 18)
	assert.Subset(t, publish, locked)

	free, ok := ProfileLevelRows(LevelFree)
	require.True(t, ok)
	assert.Len(t, free, 30)
	assert.Subset(t, free, publish)

	_, ok = ProfileLevelRows(LevelModerator)
	assert.False(t, ok)

	_, ok = ForumLevelRows(LevelLocked)
	assert.False(t, ok)
}

func TestLevelRowsAreCopies(t *testing.T) {
	first, _ := ProfileLevelRows(LevelLocked)
	first[0] = "changed"

	second, _ := ProfileLevelRows(LevelLocked)
	assert.Equal(t, "poll_view", second[0])
}
