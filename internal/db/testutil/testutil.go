// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/StoryBB/permissions/internal/db/models"
)

// OpenDB creates a migrated in-memory SQLite database.
// The pool is limited to one connection so every query sees the same memory database.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate test database")

	return db
}

// SeedGroups inserts top-level membergroups with the given ids.
func SeedGroups(t *testing.T, db *gorm.DB, ids ...models.GroupID) {
	t.Helper()

	for _, id := range ids {
		require.NoError(t, db.Create(&models.Membergroup{
			ID:     id,
			Name:   "group",
			Parent: models.ParentTopLevel,
		}).Error)
	}
}

// SeedChild inserts a membergroup inheriting from parent.
func SeedChild(t *testing.T, db *gorm.DB, id, parent models.GroupID) {
	t.Helper()

	require.NoError(t, db.Create(&models.Membergroup{
		ID:     id,
		Name:   "child",
		Parent: parent,
	}).Error)
}

// SeedProfiles inserts permission profiles with the given ids.
func SeedProfiles(t *testing.T, db *gorm.DB, ids ...models.ProfileID) {
	t.Helper()

	for _, id := range ids {
		require.NoError(t, db.Create(&models.PermissionProfile{ID: id, Name: "profile"}).Error)
	}
}

// Allow stores forum-wide rows; deny rows are written with AddDeny false.
func Allow(t *testing.T, db *gorm.DB, group models.GroupID, allow bool, perms ...string) {
	t.Helper()

	for _, p := range perms {
		require.NoError(t, db.Create(&models.Permission{GroupID: group, Permission: p, AddDeny: allow}).Error)
	}
}

// AllowBoard stores board rows of one profile.
func AllowBoard(t *testing.T, db *gorm.DB, group models.GroupID, profile models.ProfileID, allow bool, perms ...string) {
	t.Helper()

	for _, p := range perms {
		require.NoError(t, db.Create(&models.BoardPermission{
			GroupID:    group,
			ProfileID:  profile,
			Permission: p,
			AddDeny:    allow,
		}).Error)
	}
}
