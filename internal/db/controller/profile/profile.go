// Package profile stores the permission profiles boards point at.
package profile

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/models"
)

// Names of the profiles every forum ships with.
const (
	NameDefault    = "default"
	NameNoPolls    = "no_polls"
	NameReplyOnly  = "reply_only"
	NameReadOnly   = "read_only"
	idQueryPattern = "id = ?"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrProfileNotFound is returned when a profile does not exist.
	ErrProfileNotFound = errors.New("permission profile not found")
	// ErrNameEmpty is returned when a profile has no name.
	ErrNameEmpty = errors.New("permission profile name cannot be empty")
	// ErrProtectedProfile is returned when changing a profile that cannot be changed.
	ErrProtectedProfile = errors.New("permission profile is protected")
	// ErrProfileInUse is returned when deleting a profile boards still use.
	ErrProfileInUse = errors.New("permission profile is used by boards")
)

// Predefined returns the profiles a fresh install creates.
func Predefined() []models.PermissionProfile {
	return []models.PermissionProfile{
		{ID: models.ProfileDefault, Name: NameDefault},
		{ID: models.ProfileNoPolls, Name: NameNoPolls},
		{ID: models.ProfileReplyOnly, Name: NameReplyOnly},
		{ID: models.ProfileReadOnly, Name: NameReadOnly},
	}
}

// Get retrieves a profile.
func Get(ctx context.Context, db *gorm.DB, id models.ProfileID) (*models.PermissionProfile, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.PermissionProfile

	err := db.WithContext(ctx).First(&p, idQueryPattern, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrProfileNotFound, id)
	}

	if err != nil {
		return nil, err
	}

	return &p, nil
}

// List returns every profile ordered by id.
func List(ctx context.Context, db *gorm.DB) ([]models.PermissionProfile, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var profiles []models.PermissionProfile
	if err := db.WithContext(ctx).Order("id").Find(&profiles).Error; err != nil {
		return nil, err
	}

	return profiles, nil
}

// Exists reports whether a profile is stored.
func Exists(ctx context.Context, db *gorm.DB, id models.ProfileID) (bool, error) {
	_, err := Get(ctx, db, id)
	if errors.Is(err, ErrProfileNotFound) {
		return false, nil
	}

	return err == nil, err
}

// Create stores a new profile holding a copy of the board rows of source.
func Create(ctx context.Context, db *gorm.DB, name string, source models.ProfileID) (*models.PermissionProfile, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrNameEmpty
	}

	p := &models.PermissionProfile{Name: name}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := Get(ctx, tx, source); err != nil {
			return err
		}

		if err := tx.Create(p).Error; err != nil {
			return err
		}

		var rows []models.BoardPermission
		if err := tx.Where("profile_id = ?", source).Find(&rows).Error; err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}

		for i := range rows {
			rows[i].ProfileID = p.ID
		}

		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Rename changes the name of the default profile or a custom one.
func Rename(ctx context.Context, db *gorm.DB, id models.ProfileID, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrNameEmpty
	}

	if id.IsPredefined() {
		return fmt.Errorf("%w: %d", ErrProtectedProfile, id)
	}

	result := db.WithContext(ctx).Model(&models.PermissionProfile{}).Where(idQueryPattern, id).Update("name", name)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrProfileNotFound, id)
	}

	return nil
}

// Delete removes a custom profile with its board rows.
// Boards still using it are moved to the default profile when reassign is set.
func Delete(ctx context.Context, db *gorm.DB, id models.ProfileID, reassign bool) error {
	if db == nil {
		return ErrDBNil
	}

	if id <= models.ProfileReadOnly {
		return fmt.Errorf("%w: %d", ErrProtectedProfile, id)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var boards int64
		if err := tx.Model(&models.Board{}).Where("profile_id = ?", id).Count(&boards).Error; err != nil {
			return err
		}

		if boards > 0 && !reassign {
			return fmt.Errorf("%w: %d boards", ErrProfileInUse, boards)
		}

		err := tx.Model(&models.Board{}).Where("profile_id = ?", id).Update("profile_id", models.ProfileDefault).Error
		if err != nil {
			return err
		}

		if err := tx.Where("profile_id = ?", id).Delete(&models.BoardPermission{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.PermissionProfile{}, idQueryPattern, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %d", ErrProfileNotFound, id)
		}

		return nil
	})
}
