package models

// Permission is a forum-wide permission row of one group.
// A missing row means the permission is not set, which evaluates as denied.
type Permission struct {
	// GroupID is the group the row belongs to, pseudo-groups included.
	GroupID GroupID `gorm:"primaryKey;autoIncrement:false" json:"group"`
	// Permission is the stored permission name, e.g. "profile_extra_own".
	Permission string `gorm:"primaryKey;size:40" json:"permission"`
	// AddDeny is true for an explicit allow and false for an explicit deny.
	AddDeny bool `gorm:"not null" json:"addDeny"`
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
