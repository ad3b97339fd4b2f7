package models

import "time"

// GroupID identifies a membergroup. Guests and ungrouped members are pseudo-groups:
// their ids are valid everywhere a group id is accepted, but they never have a row
// in the membergroups table.
type GroupID int

const (
	// ParentTopLevel marks a membergroup that does not inherit its permissions.
	ParentTopLevel GroupID = -2
	// GroupGuest is the pseudo-group of visitors that are not logged in.
	GroupGuest GroupID = -1
	// GroupUngrouped is the pseudo-group of regular members without a primary group.
	GroupUngrouped GroupID = 0
	// GroupAdministrator is allowed everything.
	GroupAdministrator GroupID = 1
	// GroupGlobalModerator moderates every board.
	GroupGlobalModerator GroupID = 2
	// GroupModerators is the group whose board permissions board moderators receive.
	GroupModerators GroupID = 3
)

// IsPseudo reports whether the id is one of the groups that are never stored.
func (id GroupID) IsPseudo() bool {
	return id == GroupGuest || id == GroupUngrouped
}

// Membergroup represents a forum membergroup.
// A membergroup with a parent is inherited: its permission rows are a copy of the parent's
// and are rewritten whenever the parent changes.
type Membergroup struct {
	// ID is the unique identifier for the membergroup.
	ID GroupID `gorm:"primaryKey" json:"id"`
	// Name is the display name of the membergroup.
	Name string `gorm:"size:80;not null" json:"name"`
	// Description is a short explanation shown next to the group.
	Description string `gorm:"size:255" json:"description"`
	// Parent is the group this one inherits permissions from, or ParentTopLevel.
	Parent GroupID `gorm:"not null;index" json:"parent"`
	// IsCharacterGroup marks groups assigned to characters rather than accounts.
	IsCharacterGroup bool `gorm:"not null" json:"isCharacterGroup"`
	// OnlineColor is the colour used for members of this group in online lists.
	OnlineColor string `gorm:"size:20" json:"onlineColor"`
	// MinPosts is the post count that grants the group automatically, 0 for regular groups.
	MinPosts int `gorm:"not null" json:"minPosts"`
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Membergroup model.
func (Membergroup) TableName() string {
	return "membergroups"
}

// IsInherited reports whether the group copies its permissions from a parent.
func (g *Membergroup) IsInherited() bool {
	return g.Parent != ParentTopLevel
}
