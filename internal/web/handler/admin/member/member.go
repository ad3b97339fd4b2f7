// Package member provides handlers for managing forum accounts.
package member

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/web/handler"
	"github.com/StoryBB/permissions/internal/web/middleware/auth"
)

const (
	// Path is the base path for member management.
	Path = handler.RootPath + "members"
	// RouteMember addresses one member.
	RouteMember = Path + "/:id"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25

	// ManagePermission guards every route of this package.
	ManagePermission = "moderate_forum"

	errFailedLoadMembers  = "Failed to load members"
	errFailedCreateMember = "Failed to create member"
	errFailedUpdateMember = "Failed to update member"
	errFailedDeleteMember = "Failed to delete member"
	errDeleteSelf         = "You cannot delete your own account."
	errDeleteAdmin        = "Cannot delete administrators."
)

type createInput struct {
	Name       string           `json:"name"       validate:"required,min=3,max=80"`
	Email      string           `json:"email"      validate:"required,email,max=255"`
	Password   string           `json:"password"   validate:"required,min=6"`
	Primary    models.GroupID   `json:"primary"    validate:"gte=0"`
	Additional []models.GroupID `json:"additional" validate:"dive,gte=1"`
}

type updateInput struct {
	Password string `json:"password" validate:"omitempty,min=6"`
	Active   *bool  `json:"active"`
}

type listResponse struct {
	Members    []models.Member `json:"members"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalItems int64           `json:"totalItems"`
	TotalPages int             `json:"totalPages"`
}

// Service provides CRUD operations for members.
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
	guard := auth.RequirePermission(deps.Permissions.Evaluator(), ManagePermission)

	router.Get(Path, guard, s.List)
	router.Post(Path, guard, s.Create)
	router.Patch(RouteMember, guard, s.Update)
	router.Delete(RouteMember, guard, s.Delete)

	return nil
}

// List shows members with simple pagination and search.
func (s *Service) List(c fiber.Ctx) error {
	page := max(fiber.Query[int](c, "page", 1), 1)

	pageSize := fiber.Query[int](c, "pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	var (
		members    []models.Member
		totalCount int64
		tx         = s.deps.DB.WithContext(c.Context()).Model(&models.Member{})
	)

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		tx = tx.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	tx = tx.Session(&gorm.Session{})

	if err := tx.Count(&totalCount).Error; err != nil {
		log.Error().Err(err).Msg("count members failed")

		return handler.SendError(c, err, errFailedLoadMembers)
	}

	totalPages := max(int((totalCount+int64(pageSize)-1)/int64(pageSize)), 1)
	page = min(page, totalPages)

	offset := (page - 1) * pageSize
	if err := tx.Preload("AdditionalGroups").Order("id").Limit(pageSize).Offset(offset).Find(&members).Error; err != nil {
		log.Error().Err(err).Msg("query members failed")

		return handler.SendError(c, err, errFailedLoadMembers)
	}

	return c.JSON(listResponse{
		Members:    members,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalCount,
		TotalPages: totalPages,
	})
}

// Create registers a member.
func (s *Service) Create(c fiber.Ctx) error {
	var in createInput
	if err := c.Bind().JSON(&in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidBody)
	}

	if err := s.deps.Validator.Struct(in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgValidationPrefix+err.Error())
	}

	m, err := s.deps.Members.Create(c.Context(), in.Name, in.Email, in.Password, in.Primary, in.Additional...)
	if err != nil {
		return handler.SendError(c, err, errFailedCreateMember)
	}

	return c.Status(fiber.StatusCreated).JSON(m)
}

// Update resets the password or toggles whether the member may log in.
func (s *Service) Update(c fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	var in updateInput
	if err := c.Bind().JSON(&in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidBody)
	}

	if err := s.deps.Validator.Struct(in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgValidationPrefix+err.Error())
	}

	if in.Password != "" {
		if err := s.deps.Members.ResetPassword(c.Context(), id, in.Password); err != nil {
			return handler.SendError(c, err, errFailedUpdateMember)
		}
	}

	if in.Active != nil {
		if err := s.deps.Members.SetActive(c.Context(), id, *in.Active); err != nil {
			return handler.SendError(c, err, errFailedUpdateMember)
		}
	}

	m, err := s.deps.Members.Get(c.Context(), id)
	if err != nil {
		return handler.SendError(c, err, errFailedUpdateMember)
	}

	return c.JSON(m)
}

// Delete removes a member. Administrators and the current member cannot be deleted.
func (s *Service) Delete(c fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	if current, ok := auth.SubjectFrom(c); ok && current.MemberID == id {
		return handler.SendBadRequest(c, errDeleteSelf)
	}

	m, err := s.deps.Members.Get(c.Context(), id)
	if err != nil {
		return handler.SendError(c, err, errFailedDeleteMember)
	}

	for _, g := range m.Groups() {
		if g == models.GroupAdministrator {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": errDeleteAdmin})
		}
	}

	if err := s.deps.Members.Delete(c.Context(), id); err != nil {
		return handler.SendError(c, err, errFailedDeleteMember)
	}

	log.Info().Uint64("member_id", id).Msg("member deleted")

	return c.SendStatus(fiber.StatusNoContent)
}
