// Package profile provides the permission profile management api.
package profile

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	profiles "github.com/StoryBB/permissions/internal/db/controller/profile"
	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/web/handler"
	"github.com/StoryBB/permissions/internal/web/middleware/auth"
)

const (
	// Path is the base path for profile management.
	Path = handler.RootPath + "profiles"
	// RouteProfile addresses one profile.
	RouteProfile = Path + "/:id"
	// RouteCopy copies one profile under a new name.
	RouteCopy = RouteProfile + "/copy"

	// QueryReassign moves boards to the default profile when deleting a profile they use.
	QueryReassign = "reassign"

	errFailedLoadProfiles  = "Failed to load profiles"
	errFailedCreateProfile = "Failed to create profile"
	errFailedRenameProfile = "Failed to rename profile"
	errFailedDeleteProfile = "Failed to delete profile"
)

// Entry is a profile with the number of boards using it.
type Entry struct {
	models.PermissionProfile
	Boards     int64 `json:"boards"`
	Predefined bool  `json:"predefined"`
}

type createInput struct {
	Name string `json:"name" validate:"required,max=255"`
	// Source is the profile whose rows are copied, the default profile when zero.
	Source models.ProfileID `json:"source" validate:"gte=0"`
}

type renameInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

// Service manages permission profiles.
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
	guard := auth.RequirePermission(deps.Permissions.Evaluator(), "manage_permissions")

	router.Get(Path, guard, s.List)
	router.Post(Path, guard, s.Create)
	router.Put(RouteProfile, guard, s.Rename)
	router.Delete(RouteProfile, guard, s.Delete)
	router.Post(RouteCopy, guard, s.Copy)

	return nil
}

// List returns every profile with its board count.
func (s *Service) List(c fiber.Ctx) error {
	list, err := profiles.List(c.Context(), s.deps.DB)
	if err != nil {
		return handler.SendError(c, err, errFailedLoadProfiles)
	}

	var counts []struct {
		ProfileID models.ProfileID
		Boards    int64
	}

	err = s.deps.DB.WithContext(c.Context()).Model(&models.Board{}).
		Select("profile_id, COUNT(*) AS boards").
		Group("profile_id").
		Scan(&counts).Error
	if err != nil {
		return handler.SendError(c, err, errFailedLoadProfiles)
	}

	boards := make(map[models.ProfileID]int64, len(counts))
	for _, row := range counts {
		boards[row.ProfileID] = row.Boards
	}

	entries := make([]Entry, 0, len(list))
	for _, p := range list {
		entries = append(entries, Entry{PermissionProfile: p, Boards: boards[p.ID], Predefined: p.ID.IsPredefined()})
	}

	return c.JSON(entries)
}

// Create copies an existing profile under a new name.
func (s *Service) Create(c fiber.Ctx) error {
	var in createInput
	if err := c.Bind().JSON(&in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidBody)
	}

	if err := s.deps.Validator.Struct(in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgValidationPrefix+err.Error())
	}

	if in.Source == 0 {
		in.Source = models.ProfileDefault
	}

	return s.create(c, in.Name, in.Source)
}

// Copy creates a profile holding the rows of the profile in the path.
func (s *Service) Copy(c fiber.Ctx) error {
	id, ok := handler.ParamInt(c, "id")
	if !ok {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	var in renameInput
	if err := c.Bind().JSON(&in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidBody)
	}

	if err := s.deps.Validator.Struct(in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgValidationPrefix+err.Error())
	}

	return s.create(c, in.Name, models.ProfileID(id))
}

func (s *Service) create(c fiber.Ctx, name string, source models.ProfileID) error {
	p, err := profiles.Create(c.Context(), s.deps.DB, name, source)
	if err != nil {
		return handler.SendError(c, err, errFailedCreateProfile)
	}

	log.Info().Int("profile_id", int(p.ID)).Int("source", int(source)).Msg("permission profile created")

	return c.Status(fiber.StatusCreated).JSON(p)
}

// Rename changes the name of the default or a custom profile.
func (s *Service) Rename(c fiber.Ctx) error {
	id, ok := handler.ParamInt(c, "id")
	if !ok {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	var in renameInput
	if err := c.Bind().JSON(&in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidBody)
	}

	if err := s.deps.Validator.Struct(in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgValidationPrefix+err.Error())
	}

	if err := profiles.Rename(c.Context(), s.deps.DB, models.ProfileID(id), in.Name); err != nil {
		return handler.SendError(c, err, errFailedRenameProfile)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete removes a custom profile. Boards using it block the delete unless ?reassign=true.
func (s *Service) Delete(c fiber.Ctx) error {
	id, ok := handler.ParamInt(c, "id")
	if !ok {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	reassign := fiber.Query[bool](c, QueryReassign)

	if err := s.deps.Permissions.DeleteProfile(c.Context(), models.ProfileID(id), reassign); err != nil {
		return handler.SendError(c, err, errFailedDeleteProfile)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
