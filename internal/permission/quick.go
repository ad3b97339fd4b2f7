package permission

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/controller/membergroup"
	"github.com/StoryBB/permissions/internal/db/controller/profile"
	"github.com/StoryBB/permissions/internal/db/models"
)

// Quick operations, as reported in metrics and logs.
const (
	OperationLevel  = "level"
	OperationCopy   = "copy"
	OperationChange = "change"
)

// QuickRequest changes the permissions of several groups at once.
// Exactly one of Level, CopyFrom or Permission with Action must be set.
type QuickRequest struct {
	// Groups are the targets. Profile levels without groups target Guest, Ungrouped and every
	// top-level group except Administrator and Moderators, whose rows are left as they are.
	Groups []models.GroupID `json:"groups" validate:"omitempty,dive,gte=-1"`
	// Profile limits the change to the board rows of one profile. Without a profile
	// levels and copies write forum-wide rows plus the default profile.
	Profile *models.ProfileID `json:"profile,omitempty" validate:"omitempty,gte=1"`
	// Level applies a predefined permission set.
	Level Level `json:"level,omitempty" validate:"omitempty,oneof=restrict standard moderator maintenance locked publish free"`
	// CopyFrom replicates the rows of another group.
	CopyFrom *models.GroupID `json:"copyFrom,omitempty" validate:"omitempty,gte=-1"`
	// Permission and Action change a single permission.
	Permission string `json:"permission,omitempty" validate:"omitempty,max=40"`
	Action     Action `json:"action,omitempty"     validate:"omitempty,oneof=add deny clear"`
}

// Operation names the selected operation.
func (r *QuickRequest) Operation() string {
	switch {
	case r.Level != "":
		return OperationLevel
	case r.CopyFrom != nil:
		return OperationCopy
	default:
		return OperationChange
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuickRequest, fmt.Sprintf(format, args...))
}

// Validate checks that the request selects exactly one well formed operation.
func (r *QuickRequest) Validate(v *validator.Validate) error {
	if err := v.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuickRequest, err)
	}

	selected := 0
	if r.Level != "" {
		selected++
	}

	if r.CopyFrom != nil {
		selected++
	}

	if r.Permission != "" || r.Action != "" {
		selected++
	}

	if selected != 1 {
		return invalid("select exactly one of level, copyFrom or permission")
	}

	switch r.Operation() {
	case OperationLevel:
		if r.Profile == nil {
			if _, ok := ForumLevelRows(r.Level); !ok {
				return fmt.Errorf("%w: %q is not a forum level", ErrUnknownLevel, r.Level)
			}
		} else if _, ok := ProfileLevelRows(r.Level); !ok {
			return fmt.Errorf("%w: %q is not a profile level", ErrUnknownLevel, r.Level)
		}

		if r.Profile == nil && len(r.Groups) == 0 {
			return invalid("no target groups")
		}

		return nil
	case OperationChange:
		if r.Permission == "" || r.Action == "" {
			return invalid("permission and action must be given together")
		}

		category, ok := CategoryOf(r.Permission)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPermission, r.Permission)
		}

		if r.Profile != nil && category != CategoryBoard {
			return invalid("%s is not a board permission", r.Permission)
		}
	}

	if len(r.Groups) == 0 {
		return invalid("no target groups")
	}

	return nil
}

// quick runs one validated request inside a transaction.
type quick struct {
	ctx     context.Context //nolint:containedctx
	tx      *gorm.DB
	req     QuickRequest
	illegal Set
	keep    []string
	report  *Report
}

func (q *quick) run() error {
	if q.req.Profile != nil {
		if err := checkProfile(q.ctx, q.tx, *q.req.Profile); err != nil {
			return err
		}
	}

	candidates, err := q.candidates()
	if err != nil {
		return err
	}

	targets, err := q.targets(candidates)
	if err != nil {
		return err
	}

	switch q.req.Operation() {
	case OperationLevel:
		err = q.level(targets)
	case OperationCopy:
		err = q.copy(targets)
	default:
		err = q.change(targets)
	}

	if err != nil {
		return err
	}

	children, err := Propagate(q.ctx, q.tx, targets, q.coverage())
	if err != nil {
		return err
	}

	q.report.Propagated = children

	return nil
}

// checkProfile rejects profiles that are missing or read-only.
func checkProfile(ctx context.Context, tx *gorm.DB, id models.ProfileID) error {
	if id.IsPredefined() {
		return fmt.Errorf("%w: %d", ErrProtectedProfile, id)
	}

	ok, err := profile.Exists(ctx, tx, id)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: %d", ErrProfileNotFound, id)
	}

	return nil
}

// candidates returns the requested groups, or every unprotected group a profile level may touch.
func (q *quick) candidates() ([]models.GroupID, error) {
	if len(q.req.Groups) > 0 {
		return uniqueGroups(q.req.Groups), nil
	}

	var stored []models.GroupID

	err := q.tx.Model(&models.Membergroup{}).
		Where("parent = ? AND id NOT IN ?", models.ParentTopLevel,
			[]models.GroupID{models.GroupAdministrator, models.GroupModerators}).
		Order("id").
		Pluck("id", &stored).Error
	if err != nil {
		return nil, err
	}

	return append([]models.GroupID{models.GroupGuest, models.GroupUngrouped}, stored...), nil
}

// targets drops the candidates the request may not rewrite.
func (q *quick) targets(candidates []models.GroupID) ([]models.GroupID, error) {
	var out []models.GroupID

	for _, id := range candidates {
		switch {
		case id == models.GroupAdministrator:
			q.report.skip(id, "", ReasonProtected)

			continue
		case q.req.CopyFrom != nil && id == *q.req.CopyFrom:
			q.report.skip(id, "", ReasonSource)

			continue
		case q.req.CopyFrom != nil && q.req.Profile == nil && id == models.GroupModerators:
			q.report.skip(id, "", ReasonProtected)

			continue
		case id.IsPseudo():
			out = append(out, id)

			continue
		}

		g, err := membergroup.Get(q.ctx, q.tx, id)
		if errors.Is(err, membergroup.ErrGroupNotFound) {
			q.report.skip(id, "", ReasonMissing)

			continue
		}

		if err != nil {
			return nil, err
		}

		if g.IsInherited() {
			q.report.skip(id, "", ReasonInherited)

			continue
		}

		out = append(out, id)
	}

	return out, nil
}

func (q *quick) coverage() Coverage {
	if q.req.Profile != nil {
		return CoverProfile(*q.req.Profile)
	}

	if q.req.Operation() == OperationChange {
		if c, _ := CategoryOf(q.req.Permission); c == CategoryMembergroup {
			return CoverForumWide()
		}

		return CoverProfile(models.ProfileDefault)
	}

	return Coverage{ForumWide: true, Profile: models.ProfileDefault}
}

// permitted reports whether the actor may write permission for group, recording why not.
func (q *quick) permitted(group models.GroupID, permission string) bool {
	if q.illegal.Has(permission) {
		q.report.skip(group, permission, ReasonIllegal)

		return false
	}

	if group == models.GroupGuest && IsGuestIllegal(permission) {
		q.report.skip(group, permission, ReasonGuest)

		return false
	}

	return true
}

func allows(names []string) []flag {
	out := make([]flag, 0, len(names))
	for _, name := range names {
		out = append(out, flag{Permission: name, AddDeny: true})
	}

	return out
}

func (q *quick) setForum(group models.GroupID, flags []flag) error {
	var rows []models.Permission

	for _, f := range flags {
		if !q.permitted(group, f.Permission) {
			continue
		}

		rows = append(rows, models.Permission{GroupID: group, Permission: f.Permission, AddDeny: f.AddDeny})
		q.report.apply(group, 0, f.Permission, f.AddDeny)
	}

	removed, err := replaceForum(q.tx, group, rows, q.keep)
	q.report.Removed += removed

	return err
}

func (q *quick) setBoard(group models.GroupID, profileID models.ProfileID, flags []flag) error {
	var rows []models.BoardPermission

	for _, f := range flags {
		if !q.permitted(group, f.Permission) {
			continue
		}

		rows = append(rows, models.BoardPermission{
			GroupID:    group,
			ProfileID:  profileID,
			Permission: f.Permission,
			AddDeny:    f.AddDeny,
		})
		q.report.apply(group, profileID, f.Permission, f.AddDeny)
	}

	removed, err := replaceBoard(q.tx, group, profileID, rows, q.keep)
	q.report.Removed += removed

	return err
}

func (q *quick) level(targets []models.GroupID) error {
	if q.req.Profile != nil {
		names, _ := ProfileLevelRows(q.req.Level)

		for _, group := range targets {
			if err := q.setBoard(group, *q.req.Profile, allows(names)); err != nil {
				return err
			}
		}

		return nil
	}

	lvl, _ := ForumLevelRows(q.req.Level)

	for _, group := range targets {
		if err := q.setForum(group, allows(lvl.Forum)); err != nil {
			return err
		}

		if err := q.setBoard(group, models.ProfileDefault, allows(lvl.Board)); err != nil {
			return err
		}
	}

	return nil
}

func (q *quick) copy(targets []models.GroupID) error {
	source := *q.req.CopyFrom

	ok, err := membergroup.Exists(q.ctx, q.tx, source)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: %d", ErrGroupNotFound, source)
	}

	profileID := models.ProfileDefault
	if q.req.Profile != nil {
		profileID = *q.req.Profile
	}

	board, err := boardFlags(q.tx, []models.GroupID{source}, profileID)
	if err != nil {
		return err
	}

	var forum []flag

	if q.req.Profile == nil {
		if forum, err = forumFlags(q.tx, []models.GroupID{source}); err != nil {
			return err
		}
	}

	for _, group := range targets {
		if q.req.Profile == nil {
			if err := q.setForum(group, forum); err != nil {
				return err
			}
		}

		if err := q.setBoard(group, profileID, board); err != nil {
			return err
		}
	}

	return nil
}

func (q *quick) change(targets []models.GroupID) error {
	category, _ := CategoryOf(q.req.Permission)

	var profileID models.ProfileID

	if category == CategoryBoard {
		profileID = models.ProfileDefault
		if q.req.Profile != nil {
			profileID = *q.req.Profile
		}
	}

	for _, group := range targets {
		if !q.permitted(group, q.req.Permission) {
			continue
		}

		if err := q.changeOne(group, profileID); err != nil {
			return err
		}
	}

	return nil
}

func (q *quick) changeOne(group models.GroupID, profileID models.ProfileID) error {
	perm := q.req.Permission

	if q.req.Action != ActionClear {
		allow := q.req.Action == ActionAdd

		var err error
		if profileID == 0 {
			err = upsertForum(q.tx, models.Permission{GroupID: group, Permission: perm, AddDeny: allow})
		} else {
			err = upsertBoard(q.tx, models.BoardPermission{GroupID: group, ProfileID: profileID, Permission: perm, AddDeny: allow})
		}

		if err != nil {
			return err
		}

		q.report.apply(group, profileID, perm, allow)

		return nil
	}

	var result *gorm.DB
	if profileID == 0 {
		result = q.tx.Where("group_id = ? AND permission = ?", group, perm).Delete(&models.Permission{})
	} else {
		result = q.tx.Where("group_id = ? AND profile_id = ? AND permission = ?", group, profileID, perm).
			Delete(&models.BoardPermission{})
	}

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		q.report.Applied = append(q.report.Applied, Change{
			Group:      group,
			Profile:    profileID,
			Permission: perm,
			Action:     ActionClear,
		})
		q.report.Removed += result.RowsAffected
	}

	return nil
}
