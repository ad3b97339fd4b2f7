package permission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/controller/membergroup"
	"github.com/StoryBB/permissions/internal/db/controller/profile"
	"github.com/StoryBB/permissions/internal/db/models"
)

// Snapshot is a portable copy of the permission rows of every group.
type Snapshot struct {
	Groups []GroupSnapshot `yaml:"groups"`
}

// GroupSnapshot holds the rows of one group.
type GroupSnapshot struct {
	ID     models.GroupID  `yaml:"id"`
	Name   string          `yaml:"name,omitempty"`
	Parent models.GroupID  `yaml:"parent"`
	Allow  []string        `yaml:"allow,omitempty"`
	Deny   []string        `yaml:"deny,omitempty"`
	Boards []BoardSnapshot `yaml:"boards,omitempty"`
}

// BoardSnapshot holds the board rows of a group in one profile.
type BoardSnapshot struct {
	Profile models.ProfileID `yaml:"profile"`
	Allow   []string         `yaml:"allow,omitempty"`
	Deny    []string         `yaml:"deny,omitempty"`
}

// Export reads the rows of the pseudo-groups and every stored group.
func Export(ctx context.Context, db *gorm.DB) (*Snapshot, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	groups, err := membergroup.List(ctx, db)
	if err != nil {
		return nil, err
	}

	groups = append(pseudoGroups(), groups...)

	var (
		forum  []models.Permission
		boards []models.BoardPermission
	)

	if err := readRows(db.WithContext(ctx), &forum, &boards); err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	for _, g := range groups {
		snap.Groups = append(snap.Groups, groupSnapshot(g, forum, boards))
	}

	return snap, nil
}

// ExportGroup reads the rows of one group, which may be a pseudo-group.
func ExportGroup(ctx context.Context, db *gorm.DB, id models.GroupID) (*GroupSnapshot, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var g models.Membergroup

	if i := slices.IndexFunc(pseudoGroups(), func(p models.Membergroup) bool { return p.ID == id }); i >= 0 {
		g = pseudoGroups()[i]
	} else {
		stored, err := membergroup.Get(ctx, db, id)
		if err != nil {
			return nil, err
		}

		g = *stored
	}

	var (
		forum  []models.Permission
		boards []models.BoardPermission
	)

	if err := readRows(db.WithContext(ctx).Where("group_id = ?", id), &forum, &boards); err != nil {
		return nil, err
	}

	gs := groupSnapshot(g, forum, boards)

	return &gs, nil
}

func pseudoGroups() []models.Membergroup {
	return []models.Membergroup{
		{ID: models.GroupGuest, Name: "guests", Parent: models.ParentTopLevel},
		{ID: models.GroupUngrouped, Name: "regular_members", Parent: models.ParentTopLevel},
	}
}

func readRows(q *gorm.DB, forum *[]models.Permission, boards *[]models.BoardPermission) error {
	if err := q.Session(&gorm.Session{}).Order("group_id, permission").Find(forum).Error; err != nil {
		return err
	}

	return q.Session(&gorm.Session{}).Order("group_id, profile_id, permission").Find(boards).Error
}

// groupSnapshot picks the rows of g. Board rows must be ordered by profile.
func groupSnapshot(g models.Membergroup, forum []models.Permission, boards []models.BoardPermission) GroupSnapshot {
	gs := GroupSnapshot{ID: g.ID, Name: g.Name, Parent: g.Parent}

	for _, r := range forum {
		if r.GroupID != g.ID {
			continue
		}

		if r.AddDeny {
			gs.Allow = append(gs.Allow, r.Permission)
		} else {
			gs.Deny = append(gs.Deny, r.Permission)
		}
	}

	for _, r := range boards {
		if r.GroupID != g.ID {
			continue
		}

		if len(gs.Boards) == 0 || gs.Boards[len(gs.Boards)-1].Profile != r.ProfileID {
			gs.Boards = append(gs.Boards, BoardSnapshot{Profile: r.ProfileID})
		}

		bs := &gs.Boards[len(gs.Boards)-1]
		if r.AddDeny {
			bs.Allow = append(bs.Allow, r.Permission)
		} else {
			bs.Deny = append(bs.Deny, r.Permission)
		}
	}

	return gs
}

// Write encodes the snapshot as YAML.
func (s *Snapshot) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2) //nolint:mnd

	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return enc.Close()
}

// ReadSnapshot decodes a YAML snapshot.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return &s, nil
}

// Import replaces the forum-wide and board rows of every group in the snapshot on behalf
// of actor. Group structure is not imported: missing and inherited groups are skipped and
// children are rewritten from their parents afterwards. Permissions the actor does not hold
// are neither written nor removed.
func (s *Service) Import(ctx context.Context, actor Subject, snap *Snapshot) (*Report, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	illegal, err := Illegal(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	imp := &importer{ctx: ctx, illegal: illegal, keep: illegal.Sorted(), report: report}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		imp.tx = tx

		var imported []models.GroupID

		for _, gs := range snap.Groups {
			ok, err := imp.importable(gs.ID)
			if err != nil {
				return err
			}

			if !ok {
				continue
			}

			if err := imp.group(gs); err != nil {
				return err
			}

			imported = append(imported, gs.ID)
		}

		children, err := Propagate(ctx, tx, imported, CoverEverything())
		report.Propagated = children

		return err
	})
	if err != nil {
		return nil, err
	}

	s.evaluator.Invalidate(ctx)
	report.finish()

	log.Info().
		Uint64("actor", actor.MemberID).
		Int("groups", len(snap.Groups)).
		Int("applied", len(report.Applied)).
		Int("skipped", len(report.Skipped)).
		Msg("permission snapshot imported")

	return report, nil
}

// importer writes snapshot groups inside one transaction.
type importer struct {
	ctx     context.Context //nolint:containedctx
	tx      *gorm.DB
	illegal Set
	keep    []string
	report  *Report
}

func (imp *importer) importable(id models.GroupID) (bool, error) {
	if id == models.GroupAdministrator {
		imp.report.skip(id, "", ReasonProtected)

		return false, nil
	}

	if id.IsPseudo() {
		return true, nil
	}

	g, err := membergroup.Get(imp.ctx, imp.tx, id)
	if errors.Is(err, membergroup.ErrGroupNotFound) {
		imp.report.skip(id, "", ReasonMissing)

		return false, nil
	}

	if err != nil {
		return false, err
	}

	if g.IsInherited() {
		imp.report.skip(id, "", ReasonInherited)

		return false, nil
	}

	return true, nil
}

// flags folds the allow and deny lists of one table into rows, dropping names the catalog
// does not place in category and names the actor or the group may not hold.
func (imp *importer) flags(id models.GroupID, category Category, allow, deny []string) []flag {
	out := make([]flag, 0, len(allow)+len(deny))

	for _, names := range []struct {
		list  []string
		allow bool
	}{{allow, true}, {deny, false}} {
		for _, name := range names.list {
			if c, ok := CategoryOf(name); !ok || c != category {
				imp.report.skip(id, name, ReasonUnknown)

				continue
			}

			if imp.illegal.Has(name) {
				imp.report.skip(id, name, ReasonIllegal)

				continue
			}

			if id == models.GroupGuest && IsGuestIllegal(name) {
				imp.report.skip(id, name, ReasonGuest)

				continue
			}

			if slices.ContainsFunc(out, func(f flag) bool { return f.Permission == name }) {
				continue
			}

			out = append(out, flag{Permission: name, AddDeny: names.allow})
		}
	}

	return out
}

func (imp *importer) group(gs GroupSnapshot) error {
	var rows []models.Permission

	for _, f := range imp.flags(gs.ID, CategoryMembergroup, gs.Allow, gs.Deny) {
		rows = append(rows, models.Permission{GroupID: gs.ID, Permission: f.Permission, AddDeny: f.AddDeny})
		imp.report.apply(gs.ID, 0, f.Permission, f.AddDeny)
	}

	removed, err := replaceForum(imp.tx, gs.ID, rows, imp.keep)
	if err != nil {
		return err
	}

	imp.report.Removed += removed

	q := imp.tx.Where("group_id = ?", gs.ID)
	if len(imp.keep) > 0 {
		q = q.Where("permission NOT IN ?", imp.keep)
	}

	result := q.Delete(&models.BoardPermission{})
	if result.Error != nil {
		return result.Error
	}

	imp.report.Removed += result.RowsAffected

	var boardRows []models.BoardPermission

	for _, bs := range gs.Boards {
		ok, err := profile.Exists(imp.ctx, imp.tx, bs.Profile)
		if err != nil {
			return err
		}

		if !ok {
			return fmt.Errorf("%w: %d", ErrProfileNotFound, bs.Profile)
		}

		for _, f := range imp.flags(gs.ID, CategoryBoard, bs.Allow, bs.Deny) {
			boardRows = append(boardRows, models.BoardPermission{
				GroupID:    gs.ID,
				ProfileID:  bs.Profile,
				Permission: f.Permission,
				AddDeny:    f.AddDeny,
			})
			imp.report.apply(gs.ID, bs.Profile, f.Permission, f.AddDeny)
		}
	}

	if len(boardRows) == 0 {
		return nil
	}

	return imp.tx.CreateInBatches(boardRows, batchSize).Error
}
