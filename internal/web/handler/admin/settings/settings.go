// Package settings exposes the forum settings that decide which permissions are shown.
package settings

import (
	"maps"
	"slices"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/StoryBB/permissions/internal/db/controller/setting"
	"github.com/StoryBB/permissions/internal/web/handler"
	"github.com/StoryBB/permissions/internal/web/middleware/auth"
)

const (
	// Path is the base path for forum settings.
	Path = handler.RootPath + "settings"
	// RouteSetting addresses one setting.
	RouteSetting = Path + "/:name"

	errFailedLoadSettings = "Failed to load settings"
	errFailedSaveSetting  = "Failed to save setting"
	errUnknownSetting     = "Unknown setting"
)

// Setting is one stored value with the install default.
type Setting struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Default string `json:"default"`
}

type valueInput struct {
	Value string `json:"value" validate:"max=255"`
}

// Service reads and writes forum settings.
type Service struct {
	handler.Service
	deps handler.Deps
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(router fiber.Router, deps handler.Deps) error {
	if router == nil || !deps.Valid() {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)

		return nil
	}

	s.deps = deps
	guard := auth.RequirePermission(deps.Permissions.Evaluator(), "admin_forum")

	router.Get(Path, guard, s.List)
	router.Put(RouteSetting, guard, s.Set)

	return nil
}

// List returns every known setting ordered by name.
func (s *Service) List(c fiber.Ctx) error {
	stored, err := setting.All(c.Context(), s.deps.DB)
	if err != nil {
		return handler.SendError(c, err, errFailedLoadSettings)
	}

	names := slices.Sorted(maps.Keys(setting.Defaults))
	out := make([]Setting, 0, len(names))

	for _, name := range names {
		value, ok := stored[name]
		if !ok {
			value = setting.Defaults[name]
		}

		out = append(out, Setting{Name: name, Value: value, Default: setting.Defaults[name]})
	}

	return c.JSON(out)
}

// Set stores the value of a known setting.
func (s *Service) Set(c fiber.Ctx) error {
	name := c.Params("name")
	if _, ok := setting.Defaults[name]; !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": errUnknownSetting})
	}

	var in valueInput
	if err := c.Bind().JSON(&in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidBody)
	}

	if err := s.deps.Validator.Struct(in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgValidationPrefix+err.Error())
	}

	if err := setting.Set(c.Context(), s.deps.DB, name, in.Value); err != nil {
		return handler.SendError(c, err, errFailedSaveSetting)
	}

	log.Info().Str("setting", name).Str("value", in.Value).Msg("setting changed")

	return c.SendStatus(fiber.StatusNoContent)
}
