package daemon

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/StoryBB/permissions/internal/config"
	"github.com/StoryBB/permissions/internal/db/controller/member"
	"github.com/StoryBB/permissions/internal/db/controller/profile"
	"github.com/StoryBB/permissions/internal/db/controller/setting"
	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/permission"
)

// protectedGroups are the stored groups every forum has.
func protectedGroups() []models.Membergroup {
	return []models.Membergroup{
		{ID: models.GroupAdministrator, Name: "Administrator", Parent: models.ParentTopLevel, OnlineColor: "#FF0000"},
		{ID: models.GroupGlobalModerator, Name: "Global Moderator", Parent: models.ParentTopLevel, OnlineColor: "#0000FF"},
		{ID: models.GroupModerators, Name: "Moderator", Parent: models.ParentTopLevel},
	}
}

// Seed writes what a fresh forum needs and leaves existing data alone.
// The default permission rows are only installed when no rows are stored at all.
func Seed(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	tx := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true})

	groups := protectedGroups()
	if err := tx.Create(&groups).Error; err != nil {
		return fmt.Errorf("failed to seed membergroups: %w", err)
	}

	profiles := profile.Predefined()
	if err := tx.Create(&profiles).Error; err != nil {
		return fmt.Errorf("failed to seed permission profiles: %w", err)
	}

	if err := resetSequences(ctx, db); err != nil {
		return err
	}

	if err := setting.SeedDefaults(ctx, db); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	if err := seedAdmin(ctx, cfg.Admin, db); err != nil {
		return err
	}

	installed, err := permission.Install(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to install default permissions: %w", err)
	}

	if installed {
		log.Info().Msg("default permissions installed")
	}

	return nil
}

func seedAdmin(ctx context.Context, admin config.Admin, db *gorm.DB) error {
	if admin.Name == "" {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.Member{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	password, generated := admin.Password, false
	if password == "" {
		password, generated = rand.Text(), true
	}

	if _, err := member.NewProvider(db).Create(ctx, admin.Name, admin.Email, password,
		models.GroupAdministrator); err != nil {
		return fmt.Errorf("failed to create admin member: %w", err)
	}

	event := log.Warn().Str("member", admin.Name)
	if generated {
		event = event.Str("password", password)
	}

	event.Msg("admin member created, change its password")

	return nil
}

// resetSequences moves the postgres id sequences past the rows seeded with explicit ids.
func resetSequences(ctx context.Context, db *gorm.DB) error {
	if db.Dialector.Name() != config.EnginePostgres {
		return nil
	}

	for _, table := range []string{"membergroups", "permission_profiles"} {
		err := db.WithContext(ctx).Exec(
			"SELECT setval(pg_get_serial_sequence(?, 'id'), (SELECT MAX(id) FROM "+table+"))", table,
		).Error
		if err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}

	return nil
}
