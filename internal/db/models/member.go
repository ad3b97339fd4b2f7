package models

import (
	"time"

	"github.com/alexedwards/argon2id"
)

// Member represents a forum account.
// Its effective groups are the primary group plus every additional group.
type Member struct {
	// ID is the unique identifier for the member.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Active indicates whether the account may log in.
	Active bool `json:"active"`
	// Name is the unique login name.
	Name string `gorm:"unique;size:80;not null" json:"name"`
	// Email is the member's email address.
	Email string `gorm:"size:255;not null" json:"email"`
	// PasswordHash is the Argon2id hash of the password.
	PasswordHash string `gorm:"size:255" json:"-"`
	// PrimaryGroup is the member's main group, GroupUngrouped for regular members.
	PrimaryGroup GroupID `gorm:"not null;index" json:"primaryGroup"`
	// AdditionalGroups lists the secondary group memberships.
	AdditionalGroups []AdditionalGroup `gorm:"foreignKey:MemberID" json:"additionalGroups"`
	// CreatedAt is the timestamp when the member registered (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the member was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Member model.
func (Member) TableName() string {
	return "members"
}

// Groups returns the primary group followed by the additional groups, without duplicates.
func (m *Member) Groups() []GroupID {
	groups := []GroupID{m.PrimaryGroup}
	seen := map[GroupID]bool{m.PrimaryGroup: true}

	for _, ag := range m.AdditionalGroups {
		if seen[ag.GroupID] {
			continue
		}

		seen[ag.GroupID] = true
		groups = append(groups, ag.GroupID)
	}

	return groups
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams) //nolint:wrapcheck
}

// VerifyPassword compares a plaintext password with the stored hash in constant time.
func (m *Member) VerifyPassword(password string) (bool, error) {
	if m.PasswordHash == "" {
		return false, nil
	}

	return argon2id.ComparePasswordAndHash(password, m.PasswordHash) //nolint:wrapcheck
}

// AdditionalGroup is one secondary group membership of a member.
type AdditionalGroup struct {
	// MemberID is the member holding the membership.
	MemberID uint64 `gorm:"primaryKey;autoIncrement:false" json:"-"`
	// GroupID is the additional group.
	GroupID GroupID `gorm:"primaryKey;autoIncrement:false;index" json:"groupId"`
}

// TableName specifies the database table name for the AdditionalGroup model.
func (AdditionalGroup) TableName() string {
	return "member_additional_groups"
}
