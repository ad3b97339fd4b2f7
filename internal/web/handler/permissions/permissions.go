// Package permissions serves the permission catalog, the quick bulk operations and snapshots.
package permissions

import (
	"bytes"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/permission"
	"github.com/StoryBB/permissions/internal/web/handler"
	"github.com/StoryBB/permissions/internal/web/middleware/auth"
)

const (
	// Path is the base path of the permission routes.
	Path = handler.RootPath + "permissions"

	// RouteCatalog lists the permissions of a category.
	RouteCatalog = Path + "/catalog"
	// RouteIllegal lists the permissions the caller cannot change.
	RouteIllegal = Path + "/illegal"
	// RouteQuick runs a quick bulk operation.
	RouteQuick = Path + "/quick"
	// RoutePropagate rewrites inheriting groups.
	RoutePropagate = Path + "/propagate"
	// RouteExport downloads a yaml snapshot.
	RouteExport = Path + "/export"
	// RouteImport uploads a yaml snapshot.
	RouteImport = Path + "/import"
	// RouteGroup shows the rows of one group.
	RouteGroup = handler.RootPath + "groups/:id/permissions"

	// QueryCategory selects the catalog category.
	QueryCategory = "category"
	// QueryProfile limits group rows to one profile.
	QueryProfile = "profile"

	// ManagePermission guards every route of this package.
	ManagePermission = "manage_permissions"

	mimeYAML = "application/yaml"

	errMsgUnknownCategory = "Unknown category, use membergroup or board"
	errMsgCatalog         = "Failed to load the permission catalog"
	errMsgIllegal         = "Failed to load restricted permissions"
	errMsgQuick           = "Failed to change permissions"
	errMsgPropagate       = "Failed to propagate permissions"
	errMsgExport          = "Failed to export permissions"
	errMsgImport          = "Failed to import permissions"
	errMsgGroup           = "Failed to load group permissions"
)

// propagateInput is the body of RoutePropagate.
type propagateInput struct {
	Parents []models.GroupID  `json:"parents" validate:"required,min=1,dive,gte=-1"`
	Profile *models.ProfileID `json:"profile" validate:"omitempty,gte=1"`
}

// Service serves the permission routes.
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

	router.Get(RouteCatalog, guard, s.Catalog)
	router.Get(RouteIllegal, guard, s.Illegal)
	router.Post(RouteQuick, guard, s.Quick)
	router.Post(RoutePropagate, guard, s.Propagate)
	router.Get(RouteExport, guard, s.Export)
	router.Post(RouteImport, guard, s.Import)
	router.Get(RouteGroup, guard, s.Group)

	return nil
}

// Catalog lists the permissions of a category with the hidden reason of disabled features.
func (s *Service) Catalog(c fiber.Ctx) error {
	category := permission.Category(c.Query(QueryCategory, string(permission.CategoryMembergroup)))
	if category != permission.CategoryMembergroup && category != permission.CategoryBoard {
		return handler.SendBadRequest(c, errMsgUnknownCategory)
	}

	features, err := permission.LoadFeatures(c.Context(), s.deps.DB)
	if err != nil {
		return handler.SendError(c, err, errMsgCatalog)
	}

	return c.JSON(permission.List(category, features))
}

// Illegal lists the permissions the caller may neither grant nor revoke.
func (s *Service) Illegal(c fiber.Ctx) error {
	actor, _ := auth.SubjectFrom(c)

	set, err := s.deps.Permissions.Illegal(c.Context(), actor)
	if err != nil {
		return handler.SendError(c, err, errMsgIllegal)
	}

	return c.JSON(set.Sorted())
}

// Quick runs a quick bulk operation and returns its report.
func (s *Service) Quick(c fiber.Ctx) error {
	var req permission.QuickRequest
	if err := c.Bind().JSON(&req); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidBody)
	}

	actor, _ := auth.SubjectFrom(c)

	report, err := s.deps.Permissions.Quick(c.Context(), actor, req)
	if err != nil {
		return handler.SendError(c, err, errMsgQuick)
	}

	return c.JSON(report)
}

// Propagate rewrites the children of the given parents.
func (s *Service) Propagate(c fiber.Ctx) error {
	var in propagateInput
	if err := c.Bind().JSON(&in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidBody)
	}

	if err := s.deps.Validator.Struct(in); err != nil {
		return handler.SendBadRequest(c, handler.ErrMsgValidationPrefix+err.Error())
	}

	cover := permission.CoverEverything()
	if in.Profile != nil {
		cover = permission.CoverProfile(*in.Profile)
	}

	report, err := s.deps.Permissions.Propagate(c.Context(), in.Parents, cover)
	if err != nil {
		return handler.SendError(c, err, errMsgPropagate)
	}

	return c.JSON(report)
}

// Export downloads the rows of every group as yaml.
func (s *Service) Export(c fiber.Ctx) error {
	snap, err := permission.Export(c.Context(), s.deps.DB)
	if err != nil {
		return handler.SendError(c, err, errMsgExport)
	}

	var buf bytes.Buffer
	if err := snap.Write(&buf); err != nil {
		return handler.SendError(c, err, errMsgExport)
	}

	c.Set(fiber.HeaderContentType, mimeYAML)

	return c.Send(buf.Bytes())
}

// Import replaces group rows from a yaml snapshot in the body.
func (s *Service) Import(c fiber.Ctx) error {
	snap, err := permission.ReadSnapshot(bytes.NewReader(c.Body()))
	if err != nil {
		return handler.SendBadRequest(c, err.Error())
	}

	actor, _ := auth.SubjectFrom(c)

	report, err := s.deps.Permissions.Import(c.Context(), actor, snap)
	if err != nil {
		return handler.SendError(c, err, errMsgImport)
	}

	return c.JSON(report)
}

// Group shows the forum-wide and board rows of one group, optionally of one profile only.
func (s *Service) Group(c fiber.Ctx) error {
	id, ok := handler.ParamInt(c, "id")
	if !ok {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	profileID, ok := handler.QueryInt(c, QueryProfile)
	if !ok {
		return handler.SendBadRequest(c, handler.ErrMsgInvalidID)
	}

	gs, err := permission.ExportGroup(c.Context(), s.deps.DB, models.GroupID(id))
	if err != nil {
		return handler.SendError(c, err, errMsgGroup)
	}

	if profileID != nil {
		boards := gs.Boards[:0]
		for _, b := range gs.Boards {
			if b.Profile == models.ProfileID(*profileID) {
				boards = append(boards, b)
			}
		}

		gs.Boards = boards
	}

	return c.JSON(gs)
}
