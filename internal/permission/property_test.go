package permission

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/db/testutil"
)

// TestDecideProperties checks deny-wins and default-deny on the pure resolver.
func TestDecideProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("any deny denies", prop.ForAll(
		func(flags []bool, at int) bool {
			i := at % (len(flags) + 1)
			withDeny := append(append(append([]bool{}, flags[:i]...), false), flags[i:]...)

			return !Decide(withDeny)
		},
		gen.SliceOf(gen.Bool()),
		gen.IntRange(0, 50),
	))

	properties.Property("only allows grant", prop.ForAll(
		func(n int) bool {
			flags := make([]bool, n)
			for i := range flags {
				flags[i] = true
			}

			return Decide(flags) == (n > 0)
		},
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}

// TestAllowedMatchesStoredRows checks the evaluator against random rows in the database.
func TestAllowedMatchesStoredRows(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	eval := NewEvaluator(db, nil)

	groups := []models.GroupID{4, 5, 6}
	testutil.SeedGroups(t, db, groups...)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	// each state is 0 for no row, 1 for allow and 2 for deny
	properties.Property("deny wins and missing rows deny", prop.ForAll(
		func(states []int) bool {
			if err := db.Where("permission = ?", "view_stats").Delete(&models.Permission{}).Error; err != nil {
				return false
			}

			allowed, denied := false, false

			for i, state := range states {
				if state == 0 {
					continue
				}

				row := models.Permission{GroupID: groups[i], Permission: "view_stats", AddDeny: state == 1}
				if err := db.Create(&row).Error; err != nil {
					return false
				}

				allowed = allowed || state == 1
				denied = denied || state == 2
			}

			ok, err := eval.AllowedGroups(ctx, groups, "view_stats", nil)

			return err == nil && ok == (allowed && !denied)
		},
		gen.SliceOfN(len(groups), gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}
