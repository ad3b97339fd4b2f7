package models

// BoardPermission is a board-scoped permission row of one group inside one permission profile.
type BoardPermission struct {
	// GroupID is the group the row belongs to, pseudo-groups included.
	GroupID GroupID `gorm:"primaryKey;autoIncrement:false" json:"group"`
	// ProfileID is the permission profile the row is part of.
	ProfileID ProfileID `gorm:"primaryKey;autoIncrement:false;index" json:"profile"`
	// Permission is the stored permission name, e.g. "post_reply_any".
	Permission string `gorm:"primaryKey;size:40" json:"permission"`
	// AddDeny is true for an explicit allow and false for an explicit deny.
	AddDeny bool `gorm:"not null" json:"addDeny"`
}

// TableName specifies the database table name for the BoardPermission model.
func (BoardPermission) TableName() string {
	return "board_permissions"
}
