// Package db opens the permission database.
package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/StoryBB/permissions/internal/config"
	"github.com/StoryBB/permissions/internal/db/dsn"
	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/logger/adapter/stdlogger"
)

const slowQuery = 200 * time.Millisecond

// Open connects to the configured engine. SQL statements are logged through zerolog at sqlLevel.
func Open(cfg config.DB, sqlLevel string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.GormEngine {
	case config.EngineMySQL:
		dialector = mysql.Open(dsn.MySQL(cfg))
	case config.EnginePostgres:
		dialector = postgres.Open(dsn.Postgres(cfg))
	case config.EngineSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil { //nolint:mnd
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}

		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownGormEngine, cfg.GormEngine)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger(sqlLevel)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

func newLogger(level string) gormlogger.Interface {
	var (
		gormLevel gormlogger.LogLevel
		zlLevel   zerolog.Level
	)

	switch level {
	case "silent":
		gormLevel, zlLevel = gormlogger.Silent, zerolog.Disabled
	case "error":
		gormLevel, zlLevel = gormlogger.Error, zerolog.ErrorLevel
	case "info":
		gormLevel, zlLevel = gormlogger.Info, zerolog.DebugLevel
	default:
		gormLevel, zlLevel = gormlogger.Warn, zerolog.WarnLevel
	}

	return gormlogger.New(stdlogger.New("gorm", zlLevel), gormlogger.Config{
		SlowThreshold:             slowQuery,
		LogLevel:                  gormLevel,
		IgnoreRecordNotFoundError: true,
	})
}
