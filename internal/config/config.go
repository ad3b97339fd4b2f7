// Package config reads etc/main.toml.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. STORYBB_PERMS_DB_PASSWORD.
	EnvPrefix = "STORYBB_PERMS"
	// EnvJSON holds a JSON document merged over the file.
	EnvJSON = EnvPrefix + "_CONFIG_JSON"

	defaultShutDownTime = 5
)

// CacheDrivers lists the accepted cache.driver values.
var CacheDrivers = []string{"none", "memory", "redis", EngineMySQL, EnginePostgres} //nolint:gochecknoglobals

// ReadConfig reads main.toml from dir, applies environment overrides and validates the result.
func ReadConfig(dir string) (Config, error) {
	if dir == "" {
		dir = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, "main.toml"))
	v.SetConfigType("toml")

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	if raw := os.Getenv(EnvJSON); raw != "" {
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return Config{}, errors.Wrap(err, "failed to decode "+EnvJSON)
		}
	}

	return c, validate(&c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "StoryBB permissions")
	v.SetDefault("db.gormEngine", EngineSQLite)
	v.SetDefault("db.path", "./data/permissions.sqlite")
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.table", "permission_cache")
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.prefix", "storybb:perms")
	v.SetDefault("log.logLevel", "info")
	v.SetDefault("log.sqlLevel", "warn")
	v.SetDefault("log.appName", "storybb")
	v.SetDefault("log.serviceName", "permissions")
	v.SetDefault("log.console.enabled", true)
	v.SetDefault("webserver.host", "127.0.0.1")
	v.SetDefault("webserver.port", 8080)
	v.SetDefault("webserver.shutDownTime", defaultShutDownTime)
	v.SetDefault("webserver.loginRate", 5)
	v.SetDefault("webserver.loginBurst", 5)
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer

	enc := toml.NewEncoder(&buffer)
	enc.SetIndentTables(true)

	if err := enc.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings the daemon cannot start without and fills in zero values.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if !slices.Contains([]string{EngineSQLite, EngineMySQL, EnginePostgres}, c.DB.GormEngine) {
		return errors.Wrap(ErrUnknownGormEngine, invalidErrMessage)
	}

	if !slices.Contains(CacheDrivers, c.Cache.Driver) {
		return errors.Wrap(ErrUnknownCacheDriver, invalidErrMessage)
	}

	if (c.Cache.Driver == EngineMySQL || c.Cache.Driver == EnginePostgres) && c.Cache.Driver != c.DB.GormEngine {
		return errors.Wrap(ErrCacheNeedsSQLEngine, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	return nil
}
