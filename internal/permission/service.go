package permission

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/controller/board"
	"github.com/StoryBB/permissions/internal/db/controller/membergroup"
	"github.com/StoryBB/permissions/internal/db/controller/profile"
	"github.com/StoryBB/permissions/internal/db/models"
)

// Service changes the permission tables. Every change runs in one transaction, rewrites the
// inheriting children and drops the evaluator cache after commit.
type Service struct {
	db        *gorm.DB
	evaluator *Evaluator
	validate  *validator.Validate
}

// NewService creates a permission service. A nil cache disables caching.
func NewService(db *gorm.DB, cache Cache) *Service {
	return &Service{
		db:        db,
		evaluator: NewEvaluator(db, cache),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Evaluator returns the evaluator that shares the service's cache.
func (s *Service) Evaluator() *Evaluator {
	return s.evaluator
}

// Illegal returns the permissions the actor may not change.
func (s *Service) Illegal(ctx context.Context, actor Subject) (Set, error) {
	return Illegal(ctx, s.db, actor)
}

// Quick runs a quick bulk operation on behalf of actor.
// Targets and permissions the actor may not touch are skipped and listed in the report.
func (s *Service) Quick(ctx context.Context, actor Subject, req QuickRequest) (*Report, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	if err := req.Validate(s.validate); err != nil {
		return nil, err
	}

	illegal, err := Illegal(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}

	report := &Report{}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := &quick{
			ctx:     ctx,
			tx:      tx,
			req:     req,
			illegal: illegal,
			keep:    illegal.Sorted(),
			report:  report,
		}

		return q.run()
	})
	if err != nil {
		return nil, err
	}

	s.evaluator.Invalidate(ctx)
	report.finish()
	quickOperations.WithLabelValues(req.Operation()).Inc()

	log.Info().
		Uint64("actor", actor.MemberID).
		Str("operation", req.Operation()).
		Int("applied", len(report.Applied)).
		Int("skipped", len(report.Skipped)).
		Interface("propagated", report.Propagated).
		Msg("quick permission change")

	return report, nil
}

// Propagate rewrites the children of parents from their parent's rows.
func (s *Service) Propagate(ctx context.Context, parents []models.GroupID, cover Coverage) (*Report, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	report := &Report{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		children, err := Propagate(ctx, tx, parents, cover)
		report.Propagated = children

		return err
	})
	if err != nil {
		return nil, err
	}

	s.evaluator.Invalidate(ctx)

	report.NoOp = len(report.Propagated) == 0

	return report, nil
}

// SaveGroup creates or updates a membergroup. An inherited group receives a copy of its
// parent's rows right away.
func (s *Service) SaveGroup(ctx context.Context, g *models.Membergroup, create bool) error {
	if s.db == nil {
		return ErrDBNil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if create {
			err = membergroup.Create(ctx, tx, g)
		} else {
			err = membergroup.Update(ctx, tx, g)
		}

		if err != nil || !g.IsInherited() {
			return err
		}

		_, err = Propagate(ctx, tx, []models.GroupID{g.Parent}, CoverEverything())

		return err
	})
	if err != nil {
		return err
	}

	s.evaluator.Invalidate(ctx)

	log.Info().Int("group_id", int(g.ID)).Int("parent", int(g.Parent)).Bool("created", create).Msg("membergroup saved")

	return nil
}

// DeleteGroup deletes a membergroup with its rows and memberships.
func (s *Service) DeleteGroup(ctx context.Context, id models.GroupID) error {
	if err := membergroup.Delete(ctx, s.db, id); err != nil {
		return err
	}

	s.evaluator.Invalidate(ctx)

	log.Info().Int("group_id", int(id)).Msg("membergroup deleted")

	return nil
}

// SetBoardProfile points a board at another profile.
func (s *Service) SetBoardProfile(ctx context.Context, boardID uint, id models.ProfileID) error {
	if err := board.SetProfile(ctx, s.db, boardID, id); err != nil {
		return err
	}

	s.evaluator.Invalidate(ctx)

	return nil
}

// DeleteProfile deletes a custom profile, moving its boards to the default profile when reassign is set.
func (s *Service) DeleteProfile(ctx context.Context, id models.ProfileID, reassign bool) error {
	if err := profile.Delete(ctx, s.db, id, reassign); err != nil {
		return err
	}

	s.evaluator.Invalidate(ctx)

	return nil
}
