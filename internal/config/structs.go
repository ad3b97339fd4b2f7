package config

import (
	"time"

	"github.com/StoryBB/permissions/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool       `mapstructure:"devMode"   toml:"devMode"`
	Title     string     `mapstructure:"title"     toml:"title"`
	DB        DB         `mapstructure:"db"        toml:"db"`
	Cache     Cache      `mapstructure:"cache"     toml:"cache"`
	Log       logger.Log `mapstructure:"log"       toml:"log"`
	Webserver Webserver  `mapstructure:"webserver" toml:"webserver"`
	Admin     Admin      `mapstructure:"admin"     toml:"admin"`
}

// Webserver implements the admin api settings.
type Webserver struct {
	Host           string `mapstructure:"host"           toml:"host"`
	Port           int    `mapstructure:"port"           toml:"port"`
	ShutDownTime   int    `mapstructure:"shutDownTime"   toml:"shutDownTime"` // seconds
	DisableRecover bool   `mapstructure:"disableRecover" toml:"disableRecover"`

	// LoginRate is the number of failed logins allowed per minute and client ip.
	LoginRate  float64 `mapstructure:"loginRate"  toml:"loginRate"`
	LoginBurst int     `mapstructure:"loginBurst" toml:"loginBurst"`
}

// Cache selects the backend of the permission evaluator cache.
type Cache struct {
	// Driver is one of none, memory, redis, mysql, postgres.
	Driver string        `mapstructure:"driver" toml:"driver"`
	TTL    time.Duration `mapstructure:"ttl"    toml:"ttl"`
	// Table is used by the mysql and postgres drivers.
	Table string `mapstructure:"table" toml:"table"`
	Redis Redis  `mapstructure:"redis" toml:"redis"`
}

// Redis holds the redis connection settings.
type Redis struct {
	Address  string `mapstructure:"address"  toml:"address"`
	Password string `mapstructure:"password" toml:"password"`
	DB       int    `mapstructure:"db"       toml:"db"`
	Prefix   string `mapstructure:"prefix"   toml:"prefix"`
}

// Admin is the member created by the first migration.
type Admin struct {
	Name     string `mapstructure:"name"     toml:"name"`
	Email    string `mapstructure:"email"    toml:"email"`
	Password string `mapstructure:"password" toml:"password"`
}
