package permission

import "slices"

// Level names a predefined set of permissions.
type Level string

// Forum levels set forum-wide rows and the board rows of the default profile.
const (
	LevelRestrict    Level = "restrict"
	LevelStandard    Level = "standard"
	LevelModerator   Level = "moderator"
	LevelMaintenance Level = "maintenance"
)

// Profile levels set the board rows of one profile for every group.
const (
	LevelProfileStandard Level = "standard"
	LevelLocked          Level = "locked"
	LevelPublish         Level = "publish"
	LevelFree            Level = "free"
)

// ForumLevel holds the rows a forum level writes.
type ForumLevel struct {
	Forum []string
	Board []string
}

var (
	forumRestrict = []string{ //nolint:gochecknoglobals
		"search_posts", "view_stats", "who_view", "profile_identity_own",
	}
	boardRestrict = []string{ //nolint:gochecknoglobals
		"poll_view", "post_new", "post_reply_own", "post_reply_any", "delete_own", "modify_own", "report_any",
	}

	forumStandard = union(forumRestrict, []string{ //nolint:gochecknoglobals
		"view_mlist", "likes_view", "likes_like", "mention", "pm_read", "pm_send", "profile_view",
		"profile_extra_own", "profile_signature_own", "profile_forum_own", "profile_website_own",
		"profile_password_own", "profile_displayed_name", "profile_upload_avatar",
		"profile_remote_avatar", "profile_remove_own", "report_user",
	})
	boardStandard = union(boardRestrict, []string{ //nolint:gochecknoglobals
		"poll_vote", "poll_edit_own", "poll_post", "poll_add_own", "post_attachment", "lock_own",
		"remove_own", "view_attachments",
	})

	forumModerator = union(forumStandard, []string{ //nolint:gochecknoglobals
		"access_mod_center", "issue_warning",
	})
	boardModerator = union(boardStandard, []string{ //nolint:gochecknoglobals
		"make_sticky", "poll_edit_any", "delete_any", "modify_any", "lock_any", "remove_any",
		"move_any", "merge_any", "split_any", "poll_lock_any", "poll_remove_any", "poll_add_any",
		"approve_posts",
	})

	forumMaintenance = union(forumModerator, []string{ //nolint:gochecknoglobals
		"manage_attachments", "manage_smileys", "manage_boards", "moderate_forum",
		"manage_membergroups", "manage_bans", "admin_forum", "manage_permissions", "edit_news",
		"profile_identity_any", "profile_extra_any", "profile_signature_any", "profile_website_any",
		"profile_displayed_name_any", "profile_password_any",
	})
	boardMaintenance = boardModerator //nolint:gochecknoglobals

	profileLocked = []string{ //nolint:gochecknoglobals
		"poll_view", "report_any", "view_attachments",
	}
	profilePublish = union(profileLocked, []string{ //nolint:gochecknoglobals
		"post_new", "post_reply_own", "post_reply_any", "delete_own", "modify_own", "delete_replies",
		"modify_replies", "poll_vote", "poll_edit_own", "poll_post", "poll_add_own", "poll_remove_own",
		"post_attachment", "lock_own", "remove_own",
	})
	profileFree = union(profilePublish, []string{ //nolint:gochecknoglobals
		"poll_lock_any", "poll_edit_any", "poll_add_any", "poll_remove_any", "make_sticky", "lock_any",
		"remove_any", "delete_any", "split_any", "merge_any", "modify_any", "approve_posts",
	})
)

// ForumLevelRows returns a copy of the rows of a forum level.
func ForumLevelRows(level Level) (ForumLevel, bool) {
	var forum, board []string

	switch level {
	case LevelRestrict:
		forum, board = forumRestrict, boardRestrict
	case LevelStandard:
		forum, board = forumStandard, boardStandard
	case LevelModerator:
		forum, board = forumModerator, boardModerator
	case LevelMaintenance:
		forum, board = forumMaintenance, boardMaintenance
	default:
		return ForumLevel{}, false
	}

	return ForumLevel{Forum: slices.Clone(forum), Board: slices.Clone(board)}, true
}

// ProfileLevelRows returns a copy of the board rows of a profile level.
func ProfileLevelRows(level Level) ([]string, bool) {
	switch level {
	case LevelProfileStandard:
		return []string{}, true
	case LevelLocked:
		return slices.Clone(profileLocked), true
	case LevelPublish:
		return slices.Clone(profilePublish), true
	case LevelFree:
		return slices.Clone(profileFree), true
	default:
		return nil, false
	}
}

func union(base, extra []string) []string {
	out := slices.Clone(base)

	for _, p := range extra {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}

	return out
}
