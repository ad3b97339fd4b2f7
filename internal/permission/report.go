package permission

import "github.com/StoryBB/permissions/internal/db/models"

// Reasons a target or permission was left out of a change.
const (
	ReasonIllegal   = "illegal"
	ReasonGuest     = "guest"
	ReasonInherited = "inherited"
	ReasonProtected = "protected"
	ReasonSource    = "source"
	ReasonMissing   = "missing"
	ReasonUnknown   = "unknown"
)

// Action is what a change does to a permission row.
type Action string

const (
	// ActionAdd writes an allow row.
	ActionAdd Action = "add"
	// ActionDeny writes a deny row.
	ActionDeny Action = "deny"
	// ActionClear removes the row.
	ActionClear Action = "clear"
)

// Change is one row written or removed.
type Change struct {
	Group models.GroupID `json:"group" yaml:"group"`
	// Profile is zero for forum-wide rows.
	Profile    models.ProfileID `json:"profile,omitempty" yaml:"profile,omitempty"`
	Permission string           `json:"permission"        yaml:"permission"`
	Action     Action           `json:"action"            yaml:"action"`
}

// Skip records a target or permission that was filtered out.
type Skip struct {
	Group      models.GroupID `json:"group"`
	Permission string         `json:"permission,omitempty"`
	Reason     string         `json:"reason"`
}

// Report describes the outcome of a permission change.
type Report struct {
	Applied []Change `json:"applied"`
	// Removed counts the rows deleted while replacing permission sets.
	Removed    int64            `json:"removed"`
	Skipped    []Skip           `json:"skipped"`
	Propagated []models.GroupID `json:"propagated"`
	// NoOp is set when nothing was written or removed.
	NoOp bool `json:"noOp"`
}

func (r *Report) skip(group models.GroupID, permission, reason string) {
	r.Skipped = append(r.Skipped, Skip{Group: group, Permission: permission, Reason: reason})
}

func (r *Report) apply(group models.GroupID, profile models.ProfileID, permission string, allow bool) {
	action := ActionDeny
	if allow {
		action = ActionAdd
	}

	r.Applied = append(r.Applied, Change{Group: group, Profile: profile, Permission: permission, Action: action})
}

func (r *Report) finish() {
	r.NoOp = len(r.Applied) == 0 && r.Removed == 0
}
