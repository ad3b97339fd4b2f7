// Package dashboard provides the overview of the logged in member and the forum.
package dashboard

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/permission"
	"github.com/StoryBB/permissions/internal/web/handler"
	"github.com/StoryBB/permissions/internal/web/middleware/auth"
)

const (
	// Path is the path to the dashboard.
	Path = handler.RootPath + "dashboard"

	errFailedLoadDashboard = "Failed to load dashboard"
)

// Counts holds the number of stored rows per table.
type Counts struct {
	Groups          int64 `json:"groups"`
	Members         int64 `json:"members"`
	Profiles        int64 `json:"profiles"`
	Boards          int64 `json:"boards"`
	Permissions     int64 `json:"permissions"`
	BoardPermission int64 `json:"boardPermissions"`
}

// Data is the dashboard response.
type Data struct {
	Subject     permission.Subject `json:"subject"`
	Permissions []string           `json:"permissions"`
	Counts      Counts             `json:"counts"`
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	deps handler.Deps
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init registers the dashboard route. Every authenticated member may read it.
func (s *Service) Init(router fiber.Router, deps handler.Deps) error {
	if router == nil || !deps.Valid() {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)

		return nil
	}

	s.deps = deps

	router.Get(Path, s.Get)

	return nil
}

// Get returns the forum-wide permissions of the member and the table sizes.
func (s *Service) Get(c fiber.Ctx) error {
	subject, ok := auth.SubjectFrom(c)
	if !ok {
		subject = permission.Guest()
	}

	perms, err := s.deps.Permissions.Evaluator().Permissions(c.Context(), subject, nil)
	if err != nil {
		return handler.SendError(c, err, errFailedLoadDashboard)
	}

	data := Data{Subject: subject, Permissions: perms}
	db := s.deps.DB.WithContext(c.Context())

	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.Membergroup{}, &data.Counts.Groups},
		{&models.Member{}, &data.Counts.Members},
		{&models.PermissionProfile{}, &data.Counts.Profiles},
		{&models.Board{}, &data.Counts.Boards},
		{&models.Permission{}, &data.Counts.Permissions},
		{&models.BoardPermission{}, &data.Counts.BoardPermission},
	}

	for _, count := range counts {
		if err := db.Model(count.model).Count(count.dst).Error; err != nil {
			return handler.SendError(c, err, errFailedLoadDashboard)
		}
	}

	return c.JSON(data)
}
