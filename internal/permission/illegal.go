package permission

import (
	"context"
	"slices"

	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/models"
)

// Set is a set of permission names.
type Set map[string]struct{}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]

	return ok
}

// Sorted returns the names in the set in order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}

	slices.Sort(out)

	return out
}

// Illegal returns the catalog permissions the actor may neither grant nor revoke because
// the actor does not hold them. Forum-wide permissions are checked forum-wide and board
// permissions against the default profile. Administrators hold everything.
func Illegal(ctx context.Context, db *gorm.DB, actor Subject) (Set, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	groups := actor.Groups()
	out := Set{}

	if isAdmin(groups) {
		return out, nil
	}

	db = db.WithContext(ctx)

	forum, err := forumFlags(db, groups)
	if err != nil {
		return nil, err
	}

	boards, err := boardFlags(db, groups, models.ProfileDefault)
	if err != nil {
		return nil, err
	}

	held := map[Category]map[string]bool{
		CategoryMembergroup: fold(forum),
		CategoryBoard:       fold(boards),
	}

	for category, effective := range held {
		for _, name := range Names(category) {
			if !effective[name] {
				out[name] = struct{}{}
			}
		}
	}

	return out, nil
}
