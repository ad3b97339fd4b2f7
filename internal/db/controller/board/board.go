// Package board stores boards, their permission profile and their moderators.
package board

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/StoryBB/permissions/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrBoardNotFound is returned when a board does not exist.
	ErrBoardNotFound = errors.New("board not found")
	// ErrProfileNotFound is returned when assigning a profile that does not exist.
	ErrProfileNotFound = errors.New("permission profile not found")
)

// Get retrieves a board.
func Get(ctx context.Context, db *gorm.DB, id uint) (*models.Board, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var b models.Board

	err := db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrBoardNotFound, id)
	}

	if err != nil {
		return nil, err
	}

	return &b, nil
}

// Create stores a board. A zero profile means the default profile.
func Create(ctx context.Context, db *gorm.DB, b *models.Board) error {
	if db == nil {
		return ErrDBNil
	}

	if b.ProfileID == 0 {
		b.ProfileID = models.ProfileDefault
	}

	return db.WithContext(ctx).Create(b).Error
}

// ProfileOf returns the profile whose rows apply on a board.
// Missing boards and boards pointing at a missing profile use the default profile.
func ProfileOf(ctx context.Context, db *gorm.DB, id uint) (models.ProfileID, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var profile models.ProfileID

	err := db.WithContext(ctx).Model(&models.Board{}).
		Select("boards.profile_id").
		Joins("JOIN permission_profiles ON permission_profiles.id = boards.profile_id").
		Where("boards.id = ?", id).
		Limit(1).
		Scan(&profile).Error
	if err != nil {
		return 0, err
	}

	if profile <= 0 {
		return models.ProfileDefault, nil
	}

	return profile, nil
}

// SetProfile points a board at a profile.
func SetProfile(ctx context.Context, db *gorm.DB, id uint, profile models.ProfileID) error {
	if db == nil {
		return ErrDBNil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.PermissionProfile{}).Where("id = ?", profile).Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		return fmt.Errorf("%w: %d", ErrProfileNotFound, profile)
	}

	result := db.WithContext(ctx).Model(&models.Board{}).Where("id = ?", id).Update("profile_id", profile)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrBoardNotFound, id)
	}

	return nil
}

// AddModerator makes a member moderator of a board.
func AddModerator(ctx context.Context, db *gorm.DB, id uint, member uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.BoardModerator{BoardID: id, MemberID: member}).Error
}

// AddModeratorGroup makes every member of a group moderator of a board.
func AddModeratorGroup(ctx context.Context, db *gorm.DB, id uint, group models.GroupID) error {
	if db == nil {
		return ErrDBNil
	}

	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.BoardModeratorGroup{BoardID: id, GroupID: group}).Error
}

// IsModerator reports whether the member moderates the board directly or through one of groups.
func IsModerator(ctx context.Context, db *gorm.DB, id uint, member uint64, groups []models.GroupID) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	var count int64

	if member != 0 {
		err := db.WithContext(ctx).Model(&models.BoardModerator{}).
			Where("board_id = ? AND member_id = ?", id, member).
			Count(&count).Error
		if err != nil {
			return false, err
		}

		if count > 0 {
			return true, nil
		}
	}

	if len(groups) == 0 {
		return false, nil
	}

	err := db.WithContext(ctx).Model(&models.BoardModeratorGroup{}).
		Where("board_id = ? AND group_id IN ?", id, groups).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
