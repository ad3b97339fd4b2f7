// Package group provides the membergroup management api.
package group

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/controller/membergroup"
	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/web/handler"
	"github.com/StoryBB/permissions/internal/web/middleware/auth"
)

const (
	// Path is the base path for group management.
	Path = handler.RootPath + "groups"

	// RouteGroup addresses one group.
	RouteGroup = Path + "/:id"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
	// MaxPageSize clamps the page size upper bound.
	MaxPageSize = 100

	// QueryPage is the query parameter name for the current page index.
	QueryPage = "page"
	// QueryPageSize is the query parameter name for the page size.
	QueryPageSize = "pageSize"
	// QuerySearch is the query parameter name for the search term.
	QuerySearch = "search"

	// ManagePermission guards every route of this package.
	ManagePermission = "manage_membergroups"

	// ErrFailedLoadGroup indicates an unexpected error occurred while loading a single group.
	ErrFailedLoadGroup = "Failed to load group"
	// ErrFailedLoadGroups indicates an unexpected error occurred while loading multiple groups.
	ErrFailedLoadGroups = "Failed to load groups"
	// ErrFailedCreateGroup indicates the create operation failed.
	ErrFailedCreateGroup = "Failed to create group"
	// ErrFailedUpdateGroup indicates the update operation failed.
	ErrFailedUpdateGroup = "Failed to update group"
	// ErrFailedDeleteGroup indicates the delete operation failed.
	ErrFailedDeleteGroup = "Failed to delete group"
)

// Service provides CRUD operations for membergroups.
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
	router.Get(RouteGroup, guard, s.Get)
	router.Put(RouteGroup, guard, s.Update)
	router.Delete(RouteGroup, guard, s.Delete)
	router.Get(RouteMemberPermissions, auth.RequirePermission(deps.Permissions.Evaluator(), "manage_permissions"),
		s.MemberPermissions)
	router.Put(RouteMemberGroups, guard, s.SetMemberGroups)

	return nil
}

// List returns one page of groups with the number of children each has.
func (s *Service) List(c fiber.Ctx) error {
	page := fiber.Query[int](c, QueryPage, 1)
	if page < 1 {
		page = 1
	}

	pageSize := fiber.Query[int](c, QueryPageSize, DefaultPageSize)
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	var (
		groups     []models.Membergroup
		totalCount int64
		tx         = s.deps.DB.WithContext(c.Context()).Model(&models.Membergroup{})
	)

	if search := c.Query(QuerySearch); search != "" {
		like := "%" + search + "%"
		tx = tx.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	tx = tx.Session(&gorm.Session{})

	if err := tx.Count(&totalCount).Error; err != nil {
		return handler.SendError(c, err, ErrFailedLoadGroups)
	}

	totalPages := max(int((totalCount+int64(pageSize)-1)/int64(pageSize)), 1)
	page = min(page, totalPages)

	if err := tx.Order("id").Limit(pageSize).Offset((page - 1) * pageSize).Find(&groups).Error; err != nil {
		return handler.SendError(c, err, ErrFailedLoadGroups)
	}

	children := make(map[string]int64, len(groups))

	for _, g := range groups {
		ids, err := membergroup.Children(c.Context(), s.deps.DB, []models.GroupID{g.ID})
		if err != nil {
			return handler.SendError(c, err, ErrFailedLoadGroups)
		}

		children[strconv.Itoa(int(g.ID))] = int64(len(ids))
	}

	return c.JSON(listResponse{
		Groups:     groups,
		Children:   children,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalCount,
		TotalPages: totalPages,
	})
}

// Get returns one group.
func (s *Service) Get(c fiber.Ctx) error {
	id, ok := handler.ParamInt(c, "id")
	if !ok {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	g, err := membergroup.Get(c.Context(), s.deps.DB, models.GroupID(id))
	if err != nil {
		return handler.SendError(c, err, ErrFailedLoadGroup)
	}

	return c.JSON(g)
}

func (s *Service) bind(c fiber.Ctx) (*formInput, error) {
	var in formInput
	if err := c.Bind().JSON(&in); err != nil {
		return nil, handler.SendBadRequest(c, handler.ErrMsgInvalidBody)
	}

	if err := s.deps.Validator.Struct(in); err != nil {
		return nil, handler.SendBadRequest(c, handler.ErrMsgValidationPrefix+err.Error())
	}

	return &in, nil
}

// Create stores a new group. An inheriting group receives its parent's rows right away.
func (s *Service) Create(c fiber.Ctx) error {
	in, sent := s.bind(c)
	if in == nil {
		return sent
	}

	g := in.group()
	if err := s.deps.Permissions.SaveGroup(c.Context(), g, true); err != nil {
		return handler.SendError(c, err, ErrFailedCreateGroup)
	}

	return c.Status(fiber.StatusCreated).JSON(g)
}

// Update changes a group. The id of the path wins over the body.
func (s *Service) Update(c fiber.Ctx) error {
	id, ok := handler.ParamInt(c, "id")
	if !ok {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	in, sent := s.bind(c)
	if in == nil {
		return sent
	}

	g := in.group()
	g.ID = models.GroupID(id)

	if err := s.deps.Permissions.SaveGroup(c.Context(), g, false); err != nil {
		return handler.SendError(c, err, ErrFailedUpdateGroup)
	}

	return c.JSON(g)
}

// Delete removes a group with its rows and memberships.
func (s *Service) Delete(c fiber.Ctx) error {
	id, ok := handler.ParamInt(c, "id")
	if !ok {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	if err := s.deps.Permissions.DeleteGroup(c.Context(), models.GroupID(id)); err != nil {
		return handler.SendError(c, err, ErrFailedDeleteGroup)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
