package daemon

import (
	"fmt"

	mysqlstorage "github.com/gofiber/storage/mysql/v2"
	postgresstorage "github.com/gofiber/storage/postgres/v3"
	"github.com/redis/go-redis/v9"

	"github.com/StoryBB/permissions/internal/config"
	"github.com/StoryBB/permissions/internal/db/dsn"
	"github.com/StoryBB/permissions/internal/permission"
)

// newCache builds the evaluator cache of the configured driver. The returned func releases
// its connections.
func newCache(cfg *config.Config) (permission.Cache, func() error, error) {
	nop := func() error { return nil }

	switch cfg.Cache.Driver {
	case "", "none":
		return permission.NopCache{}, nop, nil
	case "memory":
		return permission.NewMemoryCache(cfg.Cache.TTL), nop, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})

		return permission.NewRedisCache(client, cfg.Cache.Redis.Prefix, cfg.Cache.TTL), client.Close, nil
	case config.EngineMySQL:
		store := mysqlstorage.New(mysqlstorage.Config{
			ConnectionURI: dsn.MySQL(cfg.DB),
			Table:         cfg.Cache.Table,
		})

		return permission.NewStorageCache(store, cfg.Cache.TTL), store.Close, nil
	case config.EnginePostgres:
		store := postgresstorage.New(postgresstorage.Config{
			ConnectionURI: dsn.Postgres(cfg.DB),
			Table:         cfg.Cache.Table,
		})

		return permission.NewStorageCache(store, cfg.Cache.TTL), store.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownCacheDriver, cfg.Cache.Driver)
	}
}
