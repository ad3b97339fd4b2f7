// Package models contains database model definitions.
package models

// Setting is a forum setting stored as a name/value pair.
type Setting struct {
	Name  string `gorm:"primaryKey;size:255"`
	Value string `gorm:"type:text"`
}

// TableName specifies the database table name for the Setting model.
func (Setting) TableName() string {
	return "settings"
}

// All returns every model that is migrated at startup.
func All() []any {
	return []any{
		&Setting{},
		&Membergroup{},
		&Member{},
		&AdditionalGroup{},
		&PermissionProfile{},
		&Board{},
		&BoardModerator{},
		&BoardModeratorGroup{},
		&Permission{},
		&BoardPermission{},
	}
}
