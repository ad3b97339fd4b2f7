// Package check answers permission checks for members and group sets.
package check

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/permission"
	"github.com/StoryBB/permissions/internal/web/handler"
	"github.com/StoryBB/permissions/internal/web/middleware/auth"
)

const (
	// Path is the check route.
	Path = handler.RootPath + "check"

	// QueryMember is the member to check.
	QueryMember = "member"
	// QueryGroups is a comma separated group set, used instead of a member.
	QueryGroups = "groups"
	// QueryPermission is the permission to check.
	QueryPermission = "permission"
	// QueryBoard is the optional board.
	QueryBoard = "board"

	errMsgSubject    = "Either member or groups is required"
	errMsgPermission = "Unknown permission"
	errMsgBoard      = "Invalid board"
	errMsgCheck      = "Failed to check permission"
)

// Result is the response of a check.
type Result struct {
	Allowed bool `json:"allowed"`
}

// Service serves the check route.
type Service struct {
	handler.Service
	deps handler.Deps
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(router fiber.Router, deps handler.Deps) error {
	if router == nil || !deps.Valid() || deps.Members == nil {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)

		return nil
	}

	s.deps = deps

	router.Get(Path, auth.RequirePermission(deps.Permissions.Evaluator(), "manage_permissions"), s.Check)

	return nil
}

func parseGroups(raw string) ([]models.GroupID, bool) {
	var out []models.GroupID

	for _, field := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, false
		}

		out = append(out, models.GroupID(id))
	}

	return out, true
}

// Check evaluates one permission for a member or a raw group set.
func (s *Service) Check(c fiber.Ctx) error {
	perm := c.Query(QueryPermission)
	if !permission.Known(perm) {
		return handler.SendBadRequest(c, errMsgPermission)
	}

	var boardID *uint

	if raw := c.Query(QueryBoard); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return handler.SendBadRequest(c, errMsgBoard)
		}

		b := uint(id)
		boardID = &b
	}

	evaluator := s.deps.Permissions.Evaluator()

	var (
		allowed bool
		err     error
	)

	switch {
	case c.Query(QueryMember) != "":
		id, perr := strconv.ParseUint(c.Query(QueryMember), 10, 64)
		if perr != nil {
			return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
		}

		m, gerr := s.deps.Members.Get(c.Context(), id)
		if gerr != nil {
			return handler.SendError(c, gerr, errMsgCheck)
		}

		allowed, err = evaluator.Allowed(c.Context(), permission.SubjectFor(m), perm, boardID)
	case c.Query(QueryGroups) != "":
		groups, ok := parseGroups(c.Query(QueryGroups))
		if !ok {
			return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
		}

		allowed, err = evaluator.AllowedGroups(c.Context(), groups, perm, boardID)
	default:
		return handler.SendBadRequest(c, errMsgSubject)
	}

	if err != nil {
		return handler.SendError(c, err, errMsgCheck)
	}

	return c.JSON(Result{Allowed: allowed})
}
