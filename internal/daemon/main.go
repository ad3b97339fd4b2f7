// Package daemon wires the database, the permission service and the web service together.
package daemon

import (
	"context"
	"net"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/config"
	"github.com/StoryBB/permissions/internal/db"
	"github.com/StoryBB/permissions/internal/db/controller/member"
	"github.com/StoryBB/permissions/internal/permission"
	"github.com/StoryBB/permissions/internal/web"
	"github.com/StoryBB/permissions/internal/web/handler"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	closeCache func() error
}

// Open connects to the configured database, migrates and seeds it.
func Open(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	conn, err := db.Open(cfg.DB, cfg.Log.SQLLevel)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(conn); err != nil {
		return nil, err
	}

	if err := Seed(ctx, cfg, conn); err != nil {
		return nil, err
	}

	return conn, nil
}

// NewService returns the permission service backed by the configured cache.
func NewService(cfg *config.Config, conn *gorm.DB) (*permission.Service, func() error, error) {
	cache, closeCache, err := newCache(cfg)
	if err != nil {
		return nil, nil, err
	}

	return permission.NewService(conn, cache), closeCache, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	conn, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	perms, closeCache, err := NewService(cfg, conn)
	if err != nil {
		return nil, err
	}

	deps := handler.Deps{
		Cfg:         cfg,
		DB:          conn,
		Permissions: perms,
		Members:     member.NewProvider(conn),
		Validator:   validator.New(validator.WithRequiredStructEnabled()),
	}

	webService, err := web.New(cfg, deps)
	if err != nil {
		_ = closeCache()

		return nil, err
	}

	return &Daemon{cfg: cfg, webService: webService, closeCache: closeCache}, nil
}

// Start serves the api until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	addr := net.JoinHostPort(d.cfg.Webserver.Host, strconv.Itoa(d.cfg.Webserver.Port))

	go d.webService.WaitShutdown()

	log.Info().Str("addr", addr).Msg("starting web service")

	err := d.webService.Start(addr)

	if cerr := d.closeCache(); cerr != nil {
		log.Error().Err(cerr).Msg("failed to close permission cache")
	}

	return err
}
