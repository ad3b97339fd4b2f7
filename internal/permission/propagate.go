package permission

import (
	"context"
	"slices"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/models"
)

// Coverage selects the rows a propagation rewrites.
type Coverage struct {
	// ForumWide rewrites the forum-wide rows.
	ForumWide bool
	// Profile rewrites the board rows of one profile when non-zero.
	Profile models.ProfileID
	// AllProfiles rewrites the board rows of every profile.
	AllProfiles bool
}

// CoverForumWide covers the forum-wide rows only.
func CoverForumWide() Coverage {
	return Coverage{ForumWide: true}
}

// CoverProfile covers the board rows of one profile.
func CoverProfile(id models.ProfileID) Coverage {
	return Coverage{Profile: id}
}

// CoverEverything covers the forum-wide rows and the board rows of every profile.
func CoverEverything() Coverage {
	return Coverage{ForumWide: true, AllProfiles: true}
}

func (c Coverage) boards() bool {
	return c.AllProfiles || c.Profile != 0
}

// Propagate replaces the rows of every group inheriting from one of parents with a copy of
// its parent's rows. It runs inside tx and only reaches direct children.
// The returned ids are the children rewritten; none means there was nothing to do.
func Propagate(ctx context.Context, tx *gorm.DB, parents []models.GroupID, cover Coverage) ([]models.GroupID, error) {
	if tx == nil {
		return nil, ErrDBNil
	}

	parents = slices.DeleteFunc(slices.Clone(parents), func(id models.GroupID) bool {
		return id == models.ParentTopLevel
	})
	if len(parents) == 0 {
		return nil, nil
	}

	tx = tx.WithContext(ctx)

	var children []models.Membergroup
	if err := tx.Where("parent IN ?", parents).Order("id").Find(&children).Error; err != nil {
		return nil, err
	}

	if len(children) == 0 {
		return nil, nil
	}

	ids := make([]models.GroupID, 0, len(children))
	for _, c := range children {
		ids = append(ids, c.ID)
	}

	if cover.ForumWide {
		if err := propagateForum(tx, parents, children, ids); err != nil {
			return nil, err
		}
	}

	if cover.boards() {
		if err := propagateBoard(tx, parents, children, ids, cover); err != nil {
			return nil, err
		}
	}

	propagatedGroups.Add(float64(len(ids)))
	log.Debug().Interface("parents", parents).Interface("children", ids).Msg("permissions propagated")

	return ids, nil
}

func propagateForum(tx *gorm.DB, parents []models.GroupID, children []models.Membergroup, ids []models.GroupID) error {
	var rows []models.Permission
	if err := tx.Where("group_id IN ?", parents).Order("group_id, permission").Find(&rows).Error; err != nil {
		return err
	}

	byParent := make(map[models.GroupID][]models.Permission)
	for _, r := range rows {
		byParent[r.GroupID] = append(byParent[r.GroupID], r)
	}

	var staged []models.Permission

	for _, child := range children {
		for _, r := range byParent[child.Parent] {
			if child.ID == models.GroupGuest && IsGuestIllegal(r.Permission) {
				continue
			}

			staged = append(staged, models.Permission{GroupID: child.ID, Permission: r.Permission, AddDeny: r.AddDeny})
		}
	}

	if err := tx.Where("group_id IN ?", ids).Delete(&models.Permission{}).Error; err != nil {
		return err
	}

	if len(staged) == 0 {
		return nil
	}

	return tx.CreateInBatches(staged, batchSize).Error
}

func propagateBoard(
	tx *gorm.DB,
	parents []models.GroupID,
	children []models.Membergroup,
	ids []models.GroupID,
	cover Coverage,
) error {
	read := tx.Where("group_id IN ?", parents)
	remove := tx.Where("group_id IN ?", ids)

	if !cover.AllProfiles {
		read = read.Where("profile_id = ?", cover.Profile)
		remove = remove.Where("profile_id = ?", cover.Profile)
	}

	var rows []models.BoardPermission
	if err := read.Order("group_id, profile_id, permission").Find(&rows).Error; err != nil {
		return err
	}

	byParent := make(map[models.GroupID][]models.BoardPermission)
	for _, r := range rows {
		byParent[r.GroupID] = append(byParent[r.GroupID], r)
	}

	var staged []models.BoardPermission

	for _, child := range children {
		for _, r := range byParent[child.Parent] {
			if child.ID == models.GroupGuest && IsGuestIllegal(r.Permission) {
				continue
			}

			staged = append(staged, models.BoardPermission{
				GroupID:    child.ID,
				ProfileID:  r.ProfileID,
				Permission: r.Permission,
				AddDeny:    r.AddDeny,
			})
		}
	}

	if err := remove.Delete(&models.BoardPermission{}).Error; err != nil {
		return err
	}

	if len(staged) == 0 {
		return nil
	}

	return tx.CreateInBatches(staged, batchSize).Error
}
