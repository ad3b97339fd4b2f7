// Package board provides the board api: profile assignment and moderators.
package board

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	boards "github.com/StoryBB/permissions/internal/db/controller/board"
	"github.com/StoryBB/permissions/internal/db/controller/profile"
	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/web/handler"
	"github.com/StoryBB/permissions/internal/web/middleware/auth"
)

const (
	// Path is the base path for boards.
	Path = handler.RootPath + "boards"
	// RouteBoard addresses one board.
	RouteBoard = Path + "/:id"
	// RouteProfile sets the profile of a board.
	RouteProfile = RouteBoard + "/profile"
	// RouteModerators adds moderators to a board.
	RouteModerators = RouteBoard + "/moderators"

	// ManagePermission guards every route of this package.
	ManagePermission = "manage_boards"

	errFailedLoadBoard    = "Failed to load board"
	errFailedCreateBoard  = "Failed to create board"
	errFailedSetProfile   = "Failed to set board profile"
	errFailedAddModerator = "Failed to add moderator"
	errModeratorTarget    = "Exactly one of member and group is required"
)

type createInput struct {
	Name    string           `json:"name"    validate:"required,max=255"`
	Profile models.ProfileID `json:"profile" validate:"gte=0"`
}

type profileInput struct {
	Profile models.ProfileID `json:"profile" validate:"required,gte=1"`
}

type moderatorInput struct {
	Member uint64          `json:"member"`
	Group  *models.GroupID `json:"group" validate:"omitempty,gte=1"`
}

// Service manages boards.
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
	guard := auth.RequirePermission(deps.Permissions.Evaluator(), ManagePermission)

	router.Post(Path, guard, s.Create)
	router.Get(RouteBoard, guard, s.Get)
	router.Put(RouteProfile, guard, s.SetProfile)
	router.Post(RouteModerators, guard, s.AddModerator)

	return nil
}

func (s *Service) boardID(c fiber.Ctx) (uint, bool) {
	id, ok := handler.ParamInt(c, "id")

	return uint(max(id, 0)), ok && id > 0 //nolint:gosec
}

// Create stores a board using the given profile, the default profile when zero.
func (s *Service) Create(c fiber.Ctx) error {
	var in createInput
	if err := c.Bind().JSON(&in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidBody)
	}

	if err := s.deps.Validator.Struct(in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgValidationPrefix+err.Error())
	}

	b := &models.Board{Name: in.Name, ProfileID: in.Profile}

	if in.Profile != 0 {
		ok, err := profile.Exists(c.Context(), s.deps.DB, in.Profile)
		if err != nil {
			return handler.SendError(c, err, errFailedCreateBoard)
		}

		if !ok {
			return handler.SendError(c, fmt.Errorf("%w: %d", boards.ErrProfileNotFound, in.Profile), errFailedCreateBoard)
		}
	}

	if err := boards.Create(c.Context(), s.deps.DB, b); err != nil {
		return handler.SendError(c, err, errFailedCreateBoard)
	}

	return c.Status(fiber.StatusCreated).JSON(b)
}

// Get returns one board.
func (s *Service) Get(c fiber.Ctx) error {
	id, ok := s.boardID(c)
	if !ok {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	b, err := boards.Get(c.Context(), s.deps.DB, id)
	if err != nil {
		return handler.SendError(c, err, errFailedLoadBoard)
	}

	return c.JSON(b)
}

// SetProfile points a board at another profile.
func (s *Service) SetProfile(c fiber.Ctx) error {
	id, ok := s.boardID(c)
	if !ok {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	var in profileInput
	if err := c.Bind().JSON(&in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidBody)
	}

	if err := s.deps.Validator.Struct(in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgValidationPrefix+err.Error())
	}

	if err := s.deps.Permissions.SetBoardProfile(c.Context(), id, in.Profile); err != nil {
		return handler.SendError(c, err, errFailedSetProfile)
	}

	log.Info().Uint("board_id", id).Int("profile_id", int(in.Profile)).Msg("board profile changed")

	return c.SendStatus(fiber.StatusNoContent)
}

// AddModerator makes a member or every member of a group moderator of the board.
func (s *Service) AddModerator(c fiber.Ctx) error {
	id, ok := s.boardID(c)
	if !ok {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	var in moderatorInput
	if err := c.Bind().JSON(&in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidBody)
	}

	if err := s.deps.Validator.Struct(in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgValidationPrefix+err.Error())
	}

	if (in.Member == 0) == (in.Group == nil) {
		return handler.SendBadRequest(c, errModeratorTarget)
	}

	if _, err := boards.Get(c.Context(), s.deps.DB, id); err != nil {
		return handler.SendError(c, err, errFailedLoadBoard)
	}

	var err error
	if in.Group != nil {
		err = boards.AddModeratorGroup(c.Context(), s.deps.DB, id, *in.Group)
	} else {
		err = boards.AddModerator(c.Context(), s.deps.DB, id, in.Member)
	}

	if err != nil {
		return handler.SendError(c, err, errFailedAddModerator)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
