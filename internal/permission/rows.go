package permission

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/StoryBB/permissions/internal/db/models"
)

const batchSize = 200

// flag is a stored permission row without its owner.
type flag struct {
	Permission string
	AddDeny    bool
}

// fold merges the rows of several groups: a deny anywhere wins, otherwise an allow grants.
func fold(flags []flag) map[string]bool {
	out := make(map[string]bool, len(flags))

	for _, f := range flags {
		allowed, seen := out[f.Permission]
		switch {
		case !seen:
			out[f.Permission] = f.AddDeny
		case allowed:
			out[f.Permission] = f.AddDeny
		}
	}

	return out
}

// Decide resolves the stored flags of one permission across a group set.
// Any deny wins, otherwise a single allow grants and no rows deny.
func Decide(flags []bool) bool {
	allowed := false

	for _, f := range flags {
		if !f {
			return false
		}

		allowed = true
	}

	return allowed
}

func forumFlags(tx *gorm.DB, groups []models.GroupID) ([]flag, error) {
	var flags []flag

	err := tx.Model(&models.Permission{}).
		Select("permission, add_deny").
		Where("group_id IN ?", groups).
		Scan(&flags).Error

	return flags, err
}

func boardFlags(tx *gorm.DB, groups []models.GroupID, profile models.ProfileID) ([]flag, error) {
	var flags []flag

	err := tx.Model(&models.BoardPermission{}).
		Select("permission, add_deny").
		Where("group_id IN ? AND profile_id = ?", groups, profile).
		Scan(&flags).Error

	return flags, err
}

// replaceForum swaps the forum-wide rows of a group for rows. Rows named in keep are left alone.
func replaceForum(tx *gorm.DB, group models.GroupID, rows []models.Permission, keep []string) (int64, error) {
	q := tx.Where("group_id = ?", group)
	if len(keep) > 0 {
		q = q.Where("permission NOT IN ?", keep)
	}

	result := q.Delete(&models.Permission{})
	if result.Error != nil {
		return 0, result.Error
	}

	if len(rows) > 0 {
		if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
			return 0, err
		}
	}

	return result.RowsAffected, nil
}

// replaceBoard swaps the rows of a group in one profile for rows. Rows named in keep are left alone.
func replaceBoard(
	tx *gorm.DB,
	group models.GroupID,
	profile models.ProfileID,
	rows []models.BoardPermission,
	keep []string,
) (int64, error) {
	q := tx.Where("group_id = ? AND profile_id = ?", group, profile)
	if len(keep) > 0 {
		q = q.Where("permission NOT IN ?", keep)
	}

	result := q.Delete(&models.BoardPermission{})
	if result.Error != nil {
		return 0, result.Error
	}

	if len(rows) > 0 {
		if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
			return 0, err
		}
	}

	return result.RowsAffected, nil
}

func upsertForum(tx *gorm.DB, row models.Permission) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "permission"}},
		DoUpdates: clause.AssignmentColumns([]string{"add_deny"}),
	}).Create(&row).Error
}

func upsertBoard(tx *gorm.DB, row models.BoardPermission) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "profile_id"}, {Name: "permission"}},
		DoUpdates: clause.AssignmentColumns([]string{"add_deny"}),
	}).Create(&row).Error
}
