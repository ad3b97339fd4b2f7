package permission

import (
	"context"
	"slices"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/models"
)

// installLevels are the forum levels a fresh install gives the predefined groups.
// Moderators only receive board rows.
var installLevels = []struct { //nolint:gochecknoglobals
	group     models.GroupID
	level     Level
	boardOnly bool
}{
	{models.GroupGuest, LevelRestrict, false},
	{models.GroupUngrouped, LevelStandard, false},
	{models.GroupGlobalModerator, LevelModerator, false},
	{models.GroupModerators, LevelModerator, true},
}

// Install writes the default rows of a fresh forum. It does nothing and reports false when
// any forum-wide or board row is stored already.
//
// The predefined profiles are derived from the default profile: no_polls drops poll
// creation, reply_only also drops new topics and read_only keeps only the locked level.
func Install(ctx context.Context, db *gorm.DB) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	installed := false

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var forum, boards int64
		if err := tx.Model(&models.Permission{}).Count(&forum).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.BoardPermission{}).Count(&boards).Error; err != nil {
			return err
		}

		if forum > 0 || boards > 0 {
			return nil
		}

		var (
			forumRows []models.Permission
			boardRows []models.BoardPermission
		)

		for _, l := range installLevels {
			rows, _ := ForumLevelRows(l.level)

			if !l.boardOnly {
				for _, name := range rows.Forum {
					if l.group == models.GroupGuest && IsGuestIllegal(name) {
						continue
					}

					forumRows = append(forumRows, models.Permission{GroupID: l.group, Permission: name, AddDeny: true})
				}
			}

			for profileID, names := range predefinedBoardRows(rows.Board) {
				for _, name := range names {
					if l.group == models.GroupGuest && IsGuestIllegal(name) {
						continue
					}

					boardRows = append(boardRows, models.BoardPermission{
						GroupID:    l.group,
						ProfileID:  profileID,
						Permission: name,
						AddDeny:    true,
					})
				}
			}
		}

		if err := tx.CreateInBatches(forumRows, batchSize).Error; err != nil {
			return err
		}

		if err := tx.CreateInBatches(boardRows, batchSize).Error; err != nil {
			return err
		}

		installed = true

		log.Info().Int("forum_rows", len(forumRows)).Int("board_rows", len(boardRows)).Msg("default permissions installed")

		return nil
	})

	return installed, err
}

// predefinedBoardRows derives the rows of every shipped profile from the default profile's rows.
func predefinedBoardRows(base []string) map[models.ProfileID][]string {
	without := func(names []string, drop func(Permission) bool) []string {
		return slices.DeleteFunc(slices.Clone(names), func(name string) bool { return drop(Parse(name)) })
	}

	noPolls := without(base, func(p Permission) bool { return p.Base == "poll_post" || p.Base == "poll_add" })
	replyOnly := without(noPolls, func(p Permission) bool { return p.Base == "post_new" })
	readOnly := without(base, func(p Permission) bool { return !slices.Contains(profileLocked, p.String()) })

	return map[models.ProfileID][]string{
		models.ProfileDefault:   base,
		models.ProfileNoPolls:   noPolls,
		models.ProfileReplyOnly: replyOnly,
		models.ProfileReadOnly:  readOnly,
	}
}
