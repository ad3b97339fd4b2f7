package models

// Board is a message board. Only the parts the permission model reads are kept here.
type Board struct {
	// ID is the unique identifier for the board.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the board name.
	Name string `gorm:"size:255;not null" json:"name"`
	// ProfileID is the permission profile applied to the board.
	ProfileID ProfileID `gorm:"not null;default:1" json:"profile"`
}

// TableName specifies the database table name for the Board model.
func (Board) TableName() string {
	return "boards"
}

// BoardModerator lists a member as moderator of a board.
type BoardModerator struct {
	BoardID  uint   `gorm:"primaryKey;autoIncrement:false"`
	MemberID uint64 `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName specifies the database table name for the BoardModerator model.
func (BoardModerator) TableName() string {
	return "board_moderators"
}

// BoardModeratorGroup lists a whole group as moderators of a board.
type BoardModeratorGroup struct {
	BoardID uint    `gorm:"primaryKey;autoIncrement:false"`
	GroupID GroupID `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName specifies the database table name for the BoardModeratorGroup model.
func (BoardModeratorGroup) TableName() string {
	return "board_moderator_groups"
}
