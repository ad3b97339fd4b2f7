package permission

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/controller/setting"
)

// Category tells which table a permission is stored in.
type Category string

const (
	// CategoryMembergroup permissions are forum-wide.
	CategoryMembergroup Category = "membergroup"
	// CategoryBoard permissions are stored per permission profile.
	CategoryBoard Category = "board"
)

// Scope is the own/any variant of a permission.
type Scope int

const (
	// ScopeNone is a permission without variants.
	ScopeNone Scope = iota
	// ScopeOwn applies to the member's own content.
	ScopeOwn
	// ScopeAny applies to everybody's content.
	ScopeAny
)

const (
	suffixOwn = "_own"
	suffixAny = "_any"
)

// Permission is a stored permission name split into its base and scope.
type Permission struct {
	Base  string
	Scope Scope
}

// Parse splits a stored permission name at its _own or _any suffix.
func Parse(name string) Permission {
	if base, ok := strings.CutSuffix(name, suffixOwn); ok && base != "" {
		return Permission{Base: base, Scope: ScopeOwn}
	}

	if base, ok := strings.CutSuffix(name, suffixAny); ok && base != "" {
		return Permission{Base: base, Scope: ScopeAny}
	}

	return Permission{Base: name}
}

// String returns the stored permission name.
func (p Permission) String() string {
	switch p.Scope {
	case ScopeOwn:
		return p.Base + suffixOwn
	case ScopeAny:
		return p.Base + suffixAny
	default:
		return p.Base
	}
}

// Reasons a catalog entry is hidden.
const (
	HiddenAttachments = "attachments_disabled"
	HiddenLikes       = "likes_disabled"
	HiddenMentions    = "mentions_disabled"
	HiddenWarnings    = "warnings_disabled"
)

// Features are the forum features that hide permissions when switched off.
type Features struct {
	Attachments bool
	Likes       bool
	Mentions    bool
	Warnings    bool
}

// AllFeatures has every feature switched on.
func AllFeatures() Features {
	return Features{Attachments: true, Likes: true, Mentions: true, Warnings: true}
}

// LoadFeatures reads the feature switches from the forum settings.
func LoadFeatures(ctx context.Context, db *gorm.DB) (Features, error) {
	var (
		f   Features
		err error
	)

	flags := []struct {
		name string
		dst  *bool
	}{
		{setting.AttachmentEnable, &f.Attachments},
		{setting.EnableLikes, &f.Likes},
		{setting.EnableMentions, &f.Mentions},
		{setting.WarningSettings, &f.Warnings},
	}

	for _, flag := range flags {
		if *flag.dst, err = setting.Enabled(ctx, db, flag.name); err != nil {
			return Features{}, err
		}
	}

	return f, nil
}

// Entry is one permission as shown to administrators.
type Entry struct {
	// ID is the permission name, without suffix when HasOwnAny is set.
	ID string `json:"id"`
	// Group is the display grouping.
	Group string `json:"group"`
	// HasOwnAny marks permissions stored as ID_own and ID_any.
	HasOwnAny bool `json:"hasOwnAny"`
	// Hidden names the disabled feature hiding the entry, empty when visible.
	Hidden string `json:"hidden,omitempty"`
}

// Names returns the stored permission names of the entry.
func (e Entry) Names() []string {
	if !e.HasOwnAny {
		return []string{e.ID}
	}

	return []string{
		Permission{Base: e.ID, Scope: ScopeOwn}.String(),
		Permission{Base: e.ID, Scope: ScopeAny}.String(),
	}
}

type catalogEntry struct {
	id        string
	group     string
	hasOwnAny bool
	feature   string
}

var membergroupCatalog = []catalogEntry{ //nolint:gochecknoglobals
	{id: "view_stats", group: "general"},
	{id: "view_mlist", group: "general"},
	{id: "who_view", group: "general"},
	{id: "search_posts", group: "general"},
	{id: "likes_view", group: "general", feature: HiddenLikes},
	{id: "likes_like", group: "general", feature: HiddenLikes},
	{id: "mention", group: "general", feature: HiddenMentions},
	{id: "pm_read", group: "pm"},
	{id: "pm_send", group: "pm"},
	{id: "pm_draft", group: "pm"},
	{id: "pm_autosave_draft", group: "pm"},
	{id: "admin_forum", group: "maintenance"},
	{id: "manage_boards", group: "maintenance"},
	{id: "manage_attachments", group: "maintenance", feature: HiddenAttachments},
	{id: "manage_smileys", group: "maintenance"},
	{id: "edit_news", group: "maintenance"},
	{id: "access_mod_center", group: "maintenance"},
	{id: "moderate_forum", group: "member_admin"},
	{id: "manage_membergroups", group: "member_admin"},
	{id: "manage_permissions", group: "member_admin"},
	{id: "manage_bans", group: "member_admin"},
	{id: "send_mail", group: "member_admin"},
	{id: "issue_warning", group: "member_admin", feature: HiddenWarnings},
	{id: "profile_view", group: "profile"},
	{id: "profile_identity", group: "profile", hasOwnAny: true},
	{id: "profile_extra", group: "profile", hasOwnAny: true},
	{id: "profile_signature", group: "profile", hasOwnAny: true},
	{id: "profile_forum", group: "profile", hasOwnAny: true},
	{id: "profile_website", group: "profile", hasOwnAny: true},
	{id: "profile_password", group: "profile", hasOwnAny: true},
	{id: "profile_displayed_name", group: "profile", hasOwnAny: true},
	{id: "profile_remove", group: "profile", hasOwnAny: true},
	{id: "profile_upload_avatar", group: "profile"},
	{id: "profile_remote_avatar", group: "profile"},
	{id: "profile_warning", group: "profile", feature: HiddenWarnings},
	{id: "report_user", group: "profile"},
}

var boardCatalog = []catalogEntry{ //nolint:gochecknoglobals
	{id: "moderate_board", group: "general_board"},
	{id: "approve_posts", group: "general_board"},
	{id: "post_new", group: "topic"},
	{id: "post_draft", group: "topic"},
	{id: "post_autosave_draft", group: "topic"},
	{id: "merge_any", group: "topic"},
	{id: "split_any", group: "topic"},
	{id: "make_sticky", group: "topic"},
	{id: "move", group: "topic", hasOwnAny: true},
	{id: "lock", group: "topic", hasOwnAny: true},
	{id: "remove", group: "topic", hasOwnAny: true},
	{id: "modify_replies", group: "topic"},
	{id: "delete_replies", group: "topic"},
	{id: "announce_topic", group: "topic"},
	{id: "delete", group: "post", hasOwnAny: true},
	{id: "modify", group: "post", hasOwnAny: true},
	{id: "post_reply", group: "post", hasOwnAny: true},
	{id: "report_any", group: "post"},
	{id: "poll_view", group: "poll"},
	{id: "poll_vote", group: "poll"},
	{id: "poll_post", group: "poll"},
	{id: "poll_add", group: "poll", hasOwnAny: true},
	{id: "poll_edit", group: "poll", hasOwnAny: true},
	{id: "poll_lock", group: "poll", hasOwnAny: true},
	{id: "poll_remove", group: "poll", hasOwnAny: true},
	{id: "view_attachments", group: "attachment", feature: HiddenAttachments},
	{id: "post_attachment", group: "attachment", feature: HiddenAttachments},
}

// categoryIndex maps every stored permission name to its category.
var categoryIndex = buildIndex() //nolint:gochecknoglobals

func buildIndex() map[string]Category {
	index := make(map[string]Category)

	for category, entries := range map[Category][]catalogEntry{
		CategoryMembergroup: membergroupCatalog,
		CategoryBoard:       boardCatalog,
	} {
		for _, e := range entries {
			for _, name := range e.entry(AllFeatures()).Names() {
				index[name] = category
			}
		}
	}

	return index
}

func (c catalogEntry) entry(f Features) Entry {
	e := Entry{ID: c.id, Group: c.group, HasOwnAny: c.hasOwnAny}

	switch c.feature {
	case HiddenAttachments:
		if !f.Attachments {
			e.Hidden = c.feature
		}
	case HiddenLikes:
		if !f.Likes {
			e.Hidden = c.feature
		}
	case HiddenMentions:
		if !f.Mentions {
			e.Hidden = c.feature
		}
	case HiddenWarnings:
		if !f.Warnings {
			e.Hidden = c.feature
		}
	}

	return e
}

// List returns the catalog of a category in display order.
func List(category Category, f Features) []Entry {
	var entries []catalogEntry

	switch category {
	case CategoryMembergroup:
		entries = membergroupCatalog
	case CategoryBoard:
		entries = boardCatalog
	default:
		return nil
	}

	out := make([]Entry, 0, len(entries))
	for _, c := range entries {
		out = append(out, c.entry(f))
	}

	return out
}

// Known reports whether name is a stored permission name of the catalog.
func Known(name string) bool {
	_, ok := categoryIndex[name]

	return ok
}

// CategoryOf returns the category of a stored permission name.
func CategoryOf(name string) (Category, bool) {
	c, ok := categoryIndex[name]

	return c, ok
}

// Names returns every stored permission name of a category.
func Names(category Category) []string {
	var names []string

	for _, e := range List(category, AllFeatures()) {
		names = append(names, e.Names()...)
	}

	return names
}
