// Package handler holds what the api handlers share.
package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/config"
	"github.com/StoryBB/permissions/internal/db/controller/member"
	"github.com/StoryBB/permissions/internal/permission"
)

// Deps are the dependencies every handler receives.
type Deps struct {
	Cfg         *config.Config
	DB          *gorm.DB
	Permissions *permission.Service
	Members     *member.Provider
	Validator   *validator.Validate
}

// Valid reports whether the required dependencies are set.
func (d Deps) Valid() bool {
	return d.Cfg != nil && d.DB != nil && d.Permissions != nil && d.Validator != nil
}

// Service is the interface for an api handler.
type Service interface {
	Init(router fiber.Router, deps Deps) error
}
