package permission

import "slices"

// nonGuest holds the permissions guests can never be granted.
// Entries are bases when the permission has own/any variants.
var nonGuest = map[string]struct{}{ //nolint:gochecknoglobals
	"access_mod_center":      {},
	"admin_forum":            {},
	"announce_topic":         {},
	"approve_posts":          {},
	"delete":                 {},
	"delete_replies":         {},
	"edit_news":              {},
	"issue_warning":          {},
	"likes_like":             {},
	"lock":                   {},
	"make_sticky":            {},
	"manage_attachments":     {},
	"manage_bans":            {},
	"manage_boards":          {},
	"manage_membergroups":    {},
	"manage_permissions":     {},
	"manage_smileys":         {},
	"merge_any":              {},
	"moderate_board":         {},
	"moderate_forum":         {},
	"modify":                 {},
	"modify_replies":         {},
	"move":                   {},
	"pm_autosave_draft":      {},
	"pm_draft":               {},
	"pm_read":                {},
	"pm_send":                {},
	"poll_add":               {},
	"poll_edit":              {},
	"poll_lock":              {},
	"poll_remove":            {},
	"post_autosave_draft":    {},
	"post_draft":             {},
	"profile_displayed_name": {},
	"profile_extra":          {},
	"profile_forum":          {},
	"profile_identity":       {},
	"profile_website":        {},
	"profile_password":       {},
	"profile_remove":         {},
	"profile_remote_avatar":  {},
	"profile_signature":      {},
	"profile_upload_avatar":  {},
	"profile_warning":        {},
	"remove":                 {},
	"report_any":             {},
	"report_user":            {},
	"send_mail":              {},
	"split_any":              {},
}

// NonGuest returns the permissions guests can never hold, sorted.
func NonGuest() []string {
	out := make([]string, 0, len(nonGuest))
	for p := range nonGuest {
		out = append(out, p)
	}

	slices.Sort(out)

	return out
}

// IsGuestIllegal reports whether guests can never hold the permission.
func IsGuestIllegal(name string) bool {
	if _, ok := nonGuest[name]; ok {
		return true
	}

	_, ok := nonGuest[Parse(name).Base]

	return ok
}
