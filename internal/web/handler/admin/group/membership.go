package group

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/StoryBB/permissions/internal/db/controller/membergroup"
	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/permission"
	"github.com/StoryBB/permissions/internal/web/handler"
	"github.com/StoryBB/permissions/internal/web/middleware/auth"
)

const (
	// RouteMemberGroups replaces the groups of a member.
	RouteMemberGroups = handler.RootPath + "members/:id/groups"
	// RouteMemberPermissions lists the effective permissions of a member.
	RouteMemberPermissions = handler.RootPath + "members/:id/permissions"

	errFailedLoadMember   = "Failed to load member"
	errFailedUpdateMember = "Failed to update member groups"
)

func memberID(c fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)

	return id, err == nil
}

// SetMemberGroups replaces the primary and additional groups of a member.
func (s *Service) SetMemberGroups(c fiber.Ctx) error {
	id, ok := memberID(c)
	if !ok {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	var in membershipInput
	if err := c.Bind().JSON(&in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidBody)
	}

	if err := s.deps.Validator.Struct(in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgValidationPrefix+err.Error())
	}

	current, err := s.deps.Members.Get(c.Context(), id)
	if err != nil {
		return handler.SendError(c, err, errFailedLoadMember)
	}

	groups := append([]models.GroupID{in.Primary}, in.Additional...)

	for _, g := range groups {
		ok, err := membergroup.Exists(c.Context(), s.deps.DB, g)
		if err != nil {
			return handler.SendError(c, err, errFailedUpdateMember)
		}

		if !ok {
			return handler.SendError(c, fmt.Errorf("%w: %d", membergroup.ErrGroupNotFound, g), errFailedUpdateMember)
		}
	}

	// Only administrators hand out or take away the Administrator group.
	actor, _ := auth.SubjectFrom(c)
	touchesAdmin := slices.Contains(groups, models.GroupAdministrator) ||
		slices.Contains(current.Groups(), models.GroupAdministrator)

	if touchesAdmin && !slices.Contains(actor.Groups(), models.GroupAdministrator) {
		return handler.SendError(c,
			fmt.Errorf("%w: %d", membergroup.ErrProtectedGroup, models.GroupAdministrator), errFailedUpdateMember)
	}

	if err := s.deps.Members.SetGroups(c.Context(), id, in.Primary, in.Additional...); err != nil {
		return handler.SendError(c, err, errFailedUpdateMember)
	}

	m, err := s.deps.Members.Get(c.Context(), id)
	if err != nil {
		return handler.SendError(c, err, errFailedLoadMember)
	}

	return c.JSON(m)
}

// MemberPermissions lists what a member is allowed, on a board when ?board= is given.
func (s *Service) MemberPermissions(c fiber.Ctx) error {
	id, ok := memberID(c)
	if !ok {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	boardID, ok := handler.QueryInt(c, "board")
	if !ok || (boardID != nil && *boardID < 0) {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	m, err := s.deps.Members.Get(c.Context(), id)
	if err != nil {
		return handler.SendError(c, err, errFailedLoadMember)
	}

	var board *uint

	if boardID != nil {
		b := uint(*boardID)
		board = &b
	}

	perms, err := s.deps.Permissions.Evaluator().Permissions(c.Context(), permission.SubjectFor(m), board)
	if err != nil {
		return handler.SendError(c, err, errFailedLoadMember)
	}

	return c.JSON(perms)
}
