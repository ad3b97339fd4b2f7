package config

import (
	"errors"
)

var (
	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrUnknownGormEngine error if db.gormEngine is not supported.
	ErrUnknownGormEngine = errors.New("config db.gormEngine must be sqlite, mysql or postgres")

	// ErrUnknownCacheDriver error if cache.driver is not supported.
	ErrUnknownCacheDriver = errors.New("config cache.driver must be none, memory, redis, mysql or postgres")

	// ErrCacheNeedsSQLEngine error if an sql cache driver does not match db.gormEngine.
	ErrCacheNeedsSQLEngine = errors.New("config cache.driver mysql and postgres must match db.gormEngine")
)
