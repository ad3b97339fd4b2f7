// Package setting reads and writes forum settings.
package setting

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/StoryBB/permissions/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"

	// AttachmentEnable toggles attachments; "0" disables them.
	AttachmentEnable = "attachmentEnable"
	// EnableLikes toggles the like system.
	EnableLikes = "enable_likes"
	// EnableMentions toggles @mentions.
	EnableMentions = "enable_mentions"
	// WarningSettings holds "enabled,watch,moderate,post"; the warning system is off when
	// the first field is 0.
	WarningSettings = "warning_settings"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when a setting name is empty.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Defaults are the settings written by a fresh install.
var Defaults = map[string]string{ //nolint:gochecknoglobals
	AttachmentEnable: "1",
	EnableLikes:      "1",
	EnableMentions:   "1",
	WarningSettings:  "1,20,0",
}

// Get retrieves the value of a setting.
func Get(ctx context.Context, db *gorm.DB, name string) (string, error) {
	if db == nil {
		return "", ErrDBNil
	}

	if name == "" {
		return "", ErrSettingNameEmpty
	}

	var s models.Setting

	err := db.WithContext(ctx).Where(nameQueryPattern, name).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrSettingNotFound
	}

	if err != nil {
		return "", err
	}

	return s.Value, nil
}

// All retrieves every setting as a name/value map.
func All(ctx context.Context, db *gorm.DB) (map[string]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var settings []models.Setting
	if err := db.WithContext(ctx).Find(&settings).Error; err != nil {
		return nil, err
	}

	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Name] = s.Value
	}

	return out, nil
}

// Set creates or replaces a setting.
func Set(ctx context.Context, db *gorm.DB, name, value string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&models.Setting{Name: name, Value: value}).Error
}

// Delete removes a setting.
func Delete(ctx context.Context, db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	result := db.WithContext(ctx).Where(nameQueryPattern, name).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}

// Enabled interprets a setting as an on/off flag. Missing settings are off.
// Comma separated values are judged by their first field.
func Enabled(ctx context.Context, db *gorm.DB, name string) (bool, error) {
	value, err := Get(ctx, db, name)
	if errors.Is(err, ErrSettingNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	value, _, _ = strings.Cut(value, ",")

	n, err := strconv.Atoi(value)
	if err != nil {
		return value != "", nil //nolint:nilerr
	}

	return n != 0, nil
}

// SeedDefaults writes every default setting that is not present yet.
func SeedDefaults(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	for name, value := range Defaults {
		err := db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Setting{Name: name, Value: value}).Error
		if err != nil {
			return err
		}
	}

	return nil
}
