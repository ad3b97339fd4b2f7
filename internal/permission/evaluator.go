package permission

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/controller/board"
	"github.com/StoryBB/permissions/internal/db/models"
)

const (
	resultAllowed = "allowed"
	resultDenied  = "denied"
	outcomeHit    = "hit"
	outcomeMiss   = "miss"
)

// Evaluator answers permission checks from the permission tables.
// It is safe for concurrent use.
type Evaluator struct {
	db    *gorm.DB
	cache Cache
}

// NewEvaluator creates an evaluator. A nil cache disables caching.
func NewEvaluator(db *gorm.DB, cache Cache) *Evaluator {
	if cache == nil {
		cache = NopCache{}
	}

	return &Evaluator{db: db, cache: cache}
}

// Invalidate drops every cached result. Call it after the permission tables changed.
func (e *Evaluator) Invalidate(ctx context.Context) {
	if err := e.cache.Invalidate(ctx); err != nil {
		log.Error().Err(err).Msg("failed to invalidate permission cache")
	}
}

// Allowed reports whether the subject holds the permission, on a board when boardID is set.
// Board moderators also receive the board rows of the Moderators group.
func (e *Evaluator) Allowed(ctx context.Context, subject Subject, permission string, boardID *uint) (bool, error) {
	return e.allowed(ctx, subject.Groups(), subject.MemberID, permission, boardID)
}

// AllowedGroups reports whether a member of all of groups holds the permission.
// On a board the moderator groups of the board count, member listings do not.
func (e *Evaluator) AllowedGroups(ctx context.Context, groups []models.GroupID, permission string, boardID *uint) (bool, error) {
	return e.allowed(ctx, uniqueGroups(groups), 0, permission, boardID)
}

// AllowedAny reports whether the subject holds at least one of permissions.
func (e *Evaluator) AllowedAny(ctx context.Context, subject Subject, permissions []string, boardID *uint) (bool, error) {
	for _, p := range permissions {
		ok, err := e.Allowed(ctx, subject, p, boardID)
		if err != nil || ok {
			return ok, err
		}
	}

	return false, nil
}

// AllowedAll reports whether the subject holds every one of permissions.
func (e *Evaluator) AllowedAll(ctx context.Context, subject Subject, permissions []string, boardID *uint) (bool, error) {
	for _, p := range permissions {
		ok, err := e.Allowed(ctx, subject, p, boardID)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

func (e *Evaluator) allowed(
	ctx context.Context,
	groups []models.GroupID,
	member uint64,
	permission string,
	boardID *uint,
) (bool, error) {
	if e.db == nil {
		return false, ErrDBNil
	}

	start := time.Now()
	defer func() { checkDuration.Observe(time.Since(start).Seconds()) }()

	ok, err := e.evaluate(ctx, groups, member, permission, boardID)
	if err != nil {
		return false, err
	}

	if ok {
		checksTotal.WithLabelValues(resultAllowed).Inc()
	} else {
		checksTotal.WithLabelValues(resultDenied).Inc()
	}

	return ok, nil
}

func (e *Evaluator) evaluate(
	ctx context.Context,
	groups []models.GroupID,
	member uint64,
	permission string,
	boardID *uint,
) (bool, error) {
	if len(groups) == 0 {
		return false, nil
	}

	if isAdmin(groups) {
		return true, nil
	}

	if guestOnly(groups) && IsGuestIllegal(permission) {
		return false, nil
	}

	var profile models.ProfileID

	if boardID != nil && !isForumWide(permission) {
		var err error

		profile, groups, err = e.onBoard(ctx, *boardID, member, groups)
		if err != nil {
			return false, err
		}
	}

	key := cacheKey(groups, profile, permission)

	gen, err := e.cache.Generation(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("permission cache generation unavailable")

		flags, err := e.flags(ctx, groups, profile, permission)
		if err != nil {
			return false, err
		}

		return Decide(flags), nil
	}

	cached, ok, err := e.cache.Get(ctx, gen, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("permission cache lookup failed")
	}

	if ok {
		cacheLookups.WithLabelValues(outcomeHit).Inc()

		return cached, nil
	}

	cacheLookups.WithLabelValues(outcomeMiss).Inc()

	flags, err := e.flags(ctx, groups, profile, permission)
	if err != nil {
		return false, err
	}

	allowed := Decide(flags)

	if err := e.cache.Set(ctx, gen, key, allowed); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("permission cache store failed")
	}

	return allowed, nil
}

// isForumWide reports whether a permission is read from the forum-wide table even on a board.
func isForumWide(permission string) bool {
	c, ok := CategoryOf(permission)

	return ok && c == CategoryMembergroup
}

// onBoard resolves the profile of a board and adds the Moderators group for its moderators.
func (e *Evaluator) onBoard(
	ctx context.Context,
	boardID uint,
	member uint64,
	groups []models.GroupID,
) (models.ProfileID, []models.GroupID, error) {
	profile, err := board.ProfileOf(ctx, e.db, boardID)
	if err != nil {
		return 0, nil, err
	}

	if slices.Contains(groups, models.GroupModerators) || guestOnly(groups) {
		return profile, groups, nil
	}

	moderator, err := board.IsModerator(ctx, e.db, boardID, member, groups)
	if err != nil {
		return 0, nil, err
	}

	if moderator {
		groups = append(slices.Clone(groups), models.GroupModerators)
	}

	return profile, groups, nil
}

func (e *Evaluator) flags(
	ctx context.Context,
	groups []models.GroupID,
	profile models.ProfileID,
	permission string,
) ([]bool, error) {
	var flags []bool

	q := e.db.WithContext(ctx)
	if profile == 0 {
		q = q.Model(&models.Permission{}).Where("group_id IN ? AND permission = ?", groups, permission)
	} else {
		q = q.Model(&models.BoardPermission{}).
			Where("group_id IN ? AND profile_id = ? AND permission = ?", groups, profile, permission)
	}

	if err := q.Pluck("add_deny", &flags).Error; err != nil {
		return nil, err
	}

	return flags, nil
}

// Permissions lists every permission the subject holds, forum-wide plus the board rows of
// boardID when set.
func (e *Evaluator) Permissions(ctx context.Context, subject Subject, boardID *uint) ([]string, error) {
	if e.db == nil {
		return nil, ErrDBNil
	}

	groups := subject.Groups()

	if isAdmin(groups) {
		names := Names(CategoryMembergroup)
		if boardID != nil {
			names = append(names, Names(CategoryBoard)...)
		}

		slices.Sort(names)

		return names, nil
	}

	db := e.db.WithContext(ctx)

	flags, err := forumFlags(db, groups)
	if err != nil {
		return nil, err
	}

	effective := fold(flags)

	if boardID != nil {
		profile, boardGroups, err := e.onBoard(ctx, *boardID, subject.MemberID, groups)
		if err != nil {
			return nil, err
		}

		flags, err := boardFlags(db, boardGroups, profile)
		if err != nil {
			return nil, err
		}

		for name, allowed := range fold(flags) {
			effective[name] = allowed
		}
	}

	out := make([]string, 0, len(effective))

	for name, allowed := range effective {
		if !allowed || (guestOnly(groups) && IsGuestIllegal(name)) {
			continue
		}

		out = append(out, name)
	}

	slices.Sort(out)

	return out, nil
}
