package permission

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/StoryBB/permissions/internal/db/models"
)

// Cache stores evaluator results until the permission tables change.
// Results are read and stored under the generation current when the evaluation started,
// so a result computed before an invalidation is never served after it.
type Cache interface {
	// Generation returns the current generation.
	Generation(ctx context.Context) (uint64, error)
	// Get returns the result cached in gen and whether there was one.
	Get(ctx context.Context, gen uint64, key string) (allowed, ok bool, err error)
	// Set stores a result computed in gen.
	Set(ctx context.Context, gen uint64, key string, allowed bool) error
	// Invalidate drops every cached result and starts a new generation.
	Invalidate(ctx context.Context) error
}

// NopCache caches nothing.
type NopCache struct{}

// Generation implements Cache.
func (NopCache) Generation(context.Context) (uint64, error) { return 0, nil }

// Get implements Cache.
func (NopCache) Get(context.Context, uint64, string) (bool, bool, error) { return false, false, nil }

// Set implements Cache.
func (NopCache) Set(context.Context, uint64, string, bool) error { return nil }

// Invalidate implements Cache.
func (NopCache) Invalidate(context.Context) error { return nil }

// cacheKey identifies a check by its sorted group set, profile and permission.
// Profile zero is the forum-wide scope.
func cacheKey(groups []models.GroupID, profile models.ProfileID, permission string) string {
	sorted := slices.Clone(groups)
	slices.Sort(sorted)

	var b strings.Builder
	for i, g := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}

		b.WriteString(strconv.Itoa(int(g)))
	}

	b.WriteByte('|')
	b.WriteString(strconv.Itoa(int(profile)))
	b.WriteByte('|')
	b.WriteString(permission)

	return b.String()
}

func encodeResult(allowed bool) []byte {
	if allowed {
		return []byte{'1'}
	}

	return []byte{'0'}
}

func decodeResult(b []byte) bool {
	return len(b) == 1 && b[0] == '1'
}
