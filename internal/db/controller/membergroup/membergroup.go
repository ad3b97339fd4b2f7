// Package membergroup stores membergroups and keeps their parent links one level deep.
package membergroup

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrGroupNotFound is returned when a membergroup does not exist.
	ErrGroupNotFound = errors.New("membergroup not found")
	// ErrNameEmpty is returned when a membergroup has no name.
	ErrNameEmpty = errors.New("membergroup name cannot be empty")
	// ErrInvalidParent is returned when a parent cannot be inherited from.
	ErrInvalidParent = errors.New("invalid parent membergroup")
	// ErrGroupHasChildren is returned when a group that others inherit from would become inherited.
	ErrGroupHasChildren = errors.New("membergroup has inheriting children")
	// ErrReservedID is returned when creating a group with a pseudo-group id.
	ErrReservedID = errors.New("membergroup id is reserved")
	// ErrProtectedGroup is returned when deleting a group the forum cannot work without.
	ErrProtectedGroup = errors.New("membergroup is protected")
)

// Get retrieves a stored membergroup.
func Get(ctx context.Context, db *gorm.DB, id models.GroupID) (*models.Membergroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var g models.Membergroup

	err := db.WithContext(ctx).First(&g, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}

	if err != nil {
		return nil, err
	}

	return &g, nil
}

// List returns every stored membergroup ordered by id.
func List(ctx context.Context, db *gorm.DB) ([]models.Membergroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var groups []models.Membergroup
	if err := db.WithContext(ctx).Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

// Exists reports whether id names a group. The pseudo-groups always exist.
func Exists(ctx context.Context, db *gorm.DB, id models.GroupID) (bool, error) {
	if id.IsPseudo() {
		return true, nil
	}

	_, err := Get(ctx, db, id)
	if errors.Is(err, ErrGroupNotFound) {
		return false, nil
	}

	return err == nil, err
}

// Children returns the ids of the groups inheriting from any of parents.
func Children(ctx context.Context, db *gorm.DB, parents []models.GroupID) ([]models.GroupID, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if len(parents) == 0 {
		return nil, nil
	}

	var ids []models.GroupID

	err := db.WithContext(ctx).Model(&models.Membergroup{}).
		Where("parent IN ?", parents).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// Create stores a new membergroup. A zero id lets the database pick one.
func Create(ctx context.Context, db *gorm.DB, g *models.Membergroup) error {
	if db == nil {
		return ErrDBNil
	}

	if g.Name == "" {
		return ErrNameEmpty
	}

	if g.ID < 0 {
		return fmt.Errorf("%w: %d", ErrReservedID, g.ID)
	}

	if err := validateParent(ctx, db, g.ID, g.Parent); err != nil {
		return err
	}

	return db.WithContext(ctx).Create(g).Error
}

// Update writes every editable field of an existing membergroup.
func Update(ctx context.Context, db *gorm.DB, g *models.Membergroup) error {
	if db == nil {
		return ErrDBNil
	}

	if g.Name == "" {
		return ErrNameEmpty
	}

	if _, err := Get(ctx, db, g.ID); err != nil {
		return err
	}

	if err := validateParent(ctx, db, g.ID, g.Parent); err != nil {
		return err
	}

	return db.WithContext(ctx).Model(&models.Membergroup{ID: g.ID}).
		Select("name", "description", "parent", "is_character_group", "online_color", "min_posts").
		Updates(g).Error
}

// Delete removes a membergroup and everything that points at it.
// Members fall back to Ungrouped and children become top-level groups keeping their current rows.
func Delete(ctx context.Context, db *gorm.DB, id models.GroupID) error {
	if db == nil {
		return ErrDBNil
	}

	if id.IsPseudo() || id == models.GroupAdministrator || id == models.GroupModerators {
		return fmt.Errorf("%w: %d", ErrProtectedGroup, id)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Membergroup{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrGroupNotFound
		}

		err := tx.Model(&models.Member{}).
			Where("primary_group = ?", id).
			Update("primary_group", models.GroupUngrouped).Error
		if err != nil {
			return err
		}

		cleanup := []any{
			&models.AdditionalGroup{},
			&models.Permission{},
			&models.BoardPermission{},
			&models.BoardModeratorGroup{},
		}
		for _, model := range cleanup {
			if err := tx.Where("group_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Membergroup{}).
			Where("parent = ?", id).
			Update("parent", models.ParentTopLevel).Error
	})
}

func validateParent(ctx context.Context, db *gorm.DB, id, parent models.GroupID) error {
	if parent == models.ParentTopLevel {
		return nil
	}

	// A zero id is assigned by the database on create and never names the Ungrouped parent.
	if (id != 0 && parent == id) || parent == models.GroupAdministrator || parent == models.GroupModerators {
		return fmt.Errorf("%w: %d", ErrInvalidParent, parent)
	}

	if !parent.IsPseudo() {
		p, err := Get(ctx, db, parent)
		if errors.Is(err, ErrGroupNotFound) {
			return fmt.Errorf("%w: %d does not exist", ErrInvalidParent, parent)
		}

		if err != nil {
			return err
		}

		if p.IsInherited() {
			return fmt.Errorf("%w: %d inherits itself", ErrInvalidParent, parent)
		}
	}

	if id == 0 {
		return nil
	}

	var children int64

	err := db.WithContext(ctx).Model(&models.Membergroup{}).Where("parent = ?", id).Count(&children).Error
	if err != nil {
		return err
	}

	if children > 0 {
		return ErrGroupHasChildren
	}

	return nil
}

// Parents returns the ids of the groups at least one group inherits from.
func Parents(ctx context.Context, db *gorm.DB) ([]models.GroupID, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var ids []models.GroupID

	err := db.WithContext(ctx).Model(&models.Membergroup{}).
		Where("parent <> ?", models.ParentTopLevel).
		Distinct("parent").
		Order("parent").
		Pluck("parent", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
