package group

import "github.com/StoryBB/permissions/internal/db/models"

type formInput struct {
	ID          models.GroupID  `json:"id"          validate:"gte=0"`
	Name        string          `json:"name"        validate:"required,min=1,max=80"`
	Description string          `json:"description" validate:"max=255"`
	// Parent defaults to top-level.
	Parent           *models.GroupID `json:"parent"           validate:"omitempty,gte=-2"`
	IsCharacterGroup bool            `json:"isCharacterGroup"`
	OnlineColor      string          `json:"onlineColor" validate:"max=20"`
	MinPosts         int             `json:"minPosts"    validate:"gte=0"`
}

func (in formInput) group() *models.Membergroup {
	g := &models.Membergroup{
		ID:               in.ID,
		Name:             in.Name,
		Description:      in.Description,
		Parent:           models.ParentTopLevel,
		IsCharacterGroup: in.IsCharacterGroup,
		OnlineColor:      in.OnlineColor,
		MinPosts:         in.MinPosts,
	}

	if in.Parent != nil {
		g.Parent = *in.Parent
	}

	return g
}

type membershipInput struct {
	Primary    models.GroupID   `json:"primary"    validate:"gte=0"`
	Additional []models.GroupID `json:"additional" validate:"dive,gte=1"`
}

type listResponse struct {
	Groups     []models.Membergroup `json:"groups"`
	Children   map[string]int64     `json:"children"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalItems int64                `json:"totalItems"`
	TotalPages int                  `json:"totalPages"`
}
