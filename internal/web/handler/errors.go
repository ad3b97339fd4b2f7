package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/StoryBB/permissions/internal/db/controller/board"
	"github.com/StoryBB/permissions/internal/db/controller/member"
	"github.com/StoryBB/permissions/internal/db/controller/membergroup"
	"github.com/StoryBB/permissions/internal/db/controller/profile"
	"github.com/StoryBB/permissions/internal/permission"
)

// statuses maps store and permission errors to response codes. Order matters for wrapped errors.
var statuses = []struct { //nolint:gochecknoglobals
	err    error
	status int
}{
	{membergroup.ErrGroupNotFound, fiber.StatusNotFound},
	{permission.ErrGroupNotFound, fiber.StatusNotFound},
	{profile.ErrProfileNotFound, fiber.StatusNotFound},
	{permission.ErrProfileNotFound, fiber.StatusNotFound},
	{board.ErrBoardNotFound, fiber.StatusNotFound},
	{board.ErrProfileNotFound, fiber.StatusNotFound},
	{member.ErrMemberNotFound, fiber.StatusNotFound},
	{membergroup.ErrProtectedGroup, fiber.StatusForbidden},
	{profile.ErrProtectedProfile, fiber.StatusForbidden},
	{permission.ErrProtectedProfile, fiber.StatusForbidden},
	{profile.ErrProfileInUse, fiber.StatusConflict},
	{membergroup.ErrGroupHasChildren, fiber.StatusConflict},
	{member.ErrNameOrEmailExists, fiber.StatusConflict},
	{permission.ErrInvalidQuickRequest, fiber.StatusBadRequest},
	{permission.ErrUnknownPermission, fiber.StatusBadRequest},
	{permission.ErrUnknownLevel, fiber.StatusBadRequest},
	{membergroup.ErrNameEmpty, fiber.StatusBadRequest},
	{membergroup.ErrInvalidParent, fiber.StatusBadRequest},
	{membergroup.ErrReservedID, fiber.StatusBadRequest},
	{profile.ErrNameEmpty, fiber.StatusBadRequest},
}

// Status returns the response code for err.
func Status(err error) int {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fiber.StatusBadRequest
	}

	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}

	return fiber.StatusInternalServerError
}

// SendError writes err as {"error": ...}. Internal errors are logged and not exposed.
func SendError(c fiber.Ctx, err error, msg string) error {
	status := Status(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg(msg)

		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// SendBadRequest writes a 400 with msg.
func SendBadRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ParamInt parses a signed path parameter.
func ParamInt(c fiber.Ctx, name string) (int, bool) {
	v, err := strconv.Atoi(c.Params(name))

	return v, err == nil
}

// QueryInt parses an optional signed query parameter. A missing parameter yields nil.
func QueryInt(c fiber.Ctx, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}

	return &v, true
}
