package models

// ProfileID identifies a permission profile.
type ProfileID int

const (
	// ProfileDefault is the profile boards fall back to.
	ProfileDefault ProfileID = 1
	// ProfileNoPolls is the predefined profile without poll permissions.
	ProfileNoPolls ProfileID = 2
	// ProfileReplyOnly is the predefined profile that only allows replies.
	ProfileReplyOnly ProfileID = 3
	// ProfileReadOnly is the predefined read-only profile.
	ProfileReadOnly ProfileID = 4
)

// IsPredefined reports whether the profile is one of the fixed profiles 2-4.
func (id ProfileID) IsPredefined() bool {
	return id > ProfileDefault && id <= ProfileReadOnly
}

// PermissionProfile is a named set of board permissions that boards point at.
type PermissionProfile struct {
	// ID is the unique identifier for the profile.
	ID ProfileID `gorm:"primaryKey" json:"id"`
	// Name is the profile name; predefined profiles use a fixed key.
	Name string `gorm:"size:255;not null" json:"name"`
}

// TableName specifies the database table name for the PermissionProfile model.
func (PermissionProfile) TableName() string {
	return "permission_profiles"
}
