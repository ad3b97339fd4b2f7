package permission

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/db/testutil"
)

// setupTestDB creates a database with the built-in groups and profiles.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := testutil.OpenDB(t)
	testutil.SeedGroups(t, db,
		models.GroupAdministrator, models.GroupGlobalModerator, models.GroupModerators)
	testutil.SeedProfiles(t, db,
		models.ProfileDefault, models.ProfileNoPolls, models.ProfileReplyOnly, models.ProfileReadOnly)

	return db
}

func forumRows(t *testing.T, db *gorm.DB, group models.GroupID) map[string]bool {
	t.Helper()

	var rows []models.Permission
	require.NoError(t, db.Where("group_id = ?", group).Find(&rows).Error)

	out := make(map[string]bool, len(rows))
	for _, r := range rows {
		out[r.Permission] = r.AddDeny
	}

	return out
}

func boardRows(t *testing.T, db *gorm.DB, group models.GroupID, profile models.ProfileID) map[string]bool {
	t.Helper()

	var rows []models.BoardPermission
	require.NoError(t, db.Where("group_id = ? AND profile_id = ?", group, profile).Find(&rows).Error)

	out := make(map[string]bool, len(rows))
	for _, r := range rows {
		out[r.Permission] = r.AddDeny
	}

	return out
}

func admin() Subject {
	return Subject{MemberID: 1, PrimaryGroup: models.GroupAdministrator}
}

func profilePtr(id models.ProfileID) *models.ProfileID {
	return &id
}

func groupPtr(id models.GroupID) *models.GroupID {
	return &id
}

func boardPtr(id uint) *uint {
	return &id
}
