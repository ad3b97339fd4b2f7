package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryBB/permissions/internal/db/controller/setting"
	"github.com/StoryBB/permissions/internal/db/testutil"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		expected Permission
	}{
		{name: "post_reply_own", expected: Permission{Base: "post_reply", Scope: ScopeOwn}},
		{name: "profile_extra_any", expected: Permission{Base: "profile_extra", Scope: ScopeAny}},
		{name: "view_stats", expected: Permission{Base: "view_stats"}},
		{name: "_own", expected: Permission{Base: "_own"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := Parse(tc.name)
			assert.Equal(t, tc.expected, p)
			assert.Equal(t, tc.name, p.String())
		})
	}
}

func TestKnownAndCategory(t *testing.T) {
	testCases := []struct {
		name     string
		known    bool
		category Category
	}{
		{name: "view_stats", known: true, category: CategoryMembergroup},
		{name: "profile_identity_own", known: true, category: CategoryMembergroup},
		{name: "profile_identity", known: false},
		{name: "post_reply_any", known: true, category: CategoryBoard},
		{name: "report_any", known: true, category: CategoryBoard},
		{name: "approve_posts", known: true, category: CategoryBoard},
		{name: "profile_displayed_name", known: false},
		{name: "profile_displayed_name_any", known: true, category: CategoryMembergroup},
		{name: "launch_rockets", known: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.known, Known(tc.name))

			c, ok := CategoryOf(tc.name)
			assert.Equal(t, tc.known, ok)
			assert.Equal(t, tc.category, c)
		})
	}
}

func TestListHidesDisabledFeatures(t *testing.T) {
	hidden := func(entries []Entry) map[string]string {
		out := map[string]string{}
		for _, e := range entries {
			if e.Hidden != "" {
				out[e.ID] = e.Hidden
			}
		}

		return out
	}

	assert.Empty(t, hidden(List(CategoryMembergroup, AllFeatures())))
	assert.Empty(t, hidden(List(CategoryBoard, AllFeatures())))

	assert.Equal(t, map[string]string{
		"likes_view":         HiddenLikes,
		"likes_like":         HiddenLikes,
		"mention":            HiddenMentions,
		"manage_attachments": HiddenAttachments,
		"issue_warning":      HiddenWarnings,
		"profile_warning":    HiddenWarnings,
	}, hidden(List(CategoryMembergroup, Features{})))

	assert.Equal(t, map[string]string{
		"view_attachments": HiddenAttachments,
		"post_attachment":  HiddenAttachments,
	}, hidden(List(CategoryBoard, Features{})))

	assert.Nil(t, List(Category("other"), AllFeatures()))
}

func TestListOrderAndNames(t *testing.T) {
	entries := List(CategoryBoard, AllFeatures())
	require.NotEmpty(t, entries)
	assert.Equal(t, "moderate_board", entries[0].ID)

	names := Names(CategoryBoard)
	assert.Contains(t, names, "post_reply_own")
	assert.Contains(t, names, "post_reply_any")
	assert.NotContains(t, names, "post_reply")

	for _, name := range append(Names(CategoryMembergroup), names...) {
		assert.True(t, Known(name), name)
	}
}

func TestLoadFeatures(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)

	f, err := LoadFeatures(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, Features{}, f, "missing settings switch features off")

	require.NoError(t, setting.SeedDefaults(ctx, db))
	require.NoError(t, setting.Set(ctx, db, setting.WarningSettings, "0,20,0"))

	f, err = LoadFeatures(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, Features{Attachments: true, Likes: true, Mentions: true, Warnings: false}, f)
}
