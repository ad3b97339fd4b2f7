package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"

	"github.com/StoryBB/permissions/internal/db/controller/membergroup"
	"github.com/StoryBB/permissions/internal/db/controller/profile"
	"github.com/StoryBB/permissions/internal/permission"
)

func TestStatus(t *testing.T) {
	type input struct {
		Name string `validate:"required"`
	}

	verr := validator.New().Struct(input{})

	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "wrapped not found", err: fmt.Errorf("load: %w", membergroup.ErrGroupNotFound), want: fiber.StatusNotFound},
		{name: "protected profile", err: permission.ErrProtectedProfile, want: fiber.StatusForbidden},
		{name: "profile in use", err: profile.ErrProfileInUse, want: fiber.StatusConflict},
		{name: "invalid quick", err: fmt.Errorf("%w: two operations", permission.ErrInvalidQuickRequest), want: fiber.StatusBadRequest},
		{name: "validation", err: verr, want: fiber.StatusBadRequest},
		{name: "unknown", err: errors.New("disk on fire"), want: fiber.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Status(tc.err))
		})
	}
}
