package roles

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eros-estates/backend/internal/identity"
	"github.com/eros-estates/backend/internal/models"
	"github.com/eros-estates/backend/pkg/response"
)

// Reader is the role lookup the handler needs.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	GetAll(ctx context.Context) ([]models.Role, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error)
	IsMember(ctx context.Context, estateID, userID uuid.UUID) (bool, error)
}

// Handler handles role HTTP endpoints. Admins see every role; other callers
// see global roles and the roles of their own estates.
type Handler struct {
	repo Reader
}

// NewHandler creates a roles handler.
func NewHandler(repo Reader) *Handler {
	return &Handler{repo: repo}
}

// RoleResponse is the API shape of a role: permissions as ids.
type RoleResponse struct {
	ID          uuid.UUID   `json:"id"`
	EstateID    *uuid.UUID  `json:"estate_id,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Permissions []uuid.UUID `json:"permissions"`
}

func toResponse(r *models.Role) RoleResponse {
	return RoleResponse{ID: r.ID, EstateID: r.EstateID, Name: r.Name, Description: r.Description, Permissions: r.PermissionIDs()}
}

// List handles GET /roles.
func (h *Handler) List(c *gin.Context) {
	p, err := identity.Resolve(identity.ClaimsFrom(c))
	if err != nil {
		response.Unauthorized(c, "unauthorized")
		return
	}
	var list []models.Role
	if p.IsAdmin {
		list, err = h.repo.GetAll(c.Request.Context())
	} else {
		list, err = h.repo.ListForUser(c.Request.Context(), p.UserID)
	}
	if err != nil {
		response.Internal(c, "failed to load roles")
		return
	}
	out := make([]RoleResponse, 0, len(list))
	for i := range list {
		out = append(out, toResponse(&list[i]))
	}
	response.OK(c, out)
}

// Get handles GET /roles/:id. Roles of estates the caller is not in read as missing.
func (h *Handler) Get(c *gin.Context) {
	p, err := identity.Resolve(identity.ClaimsFrom(c))
	if err != nil {
		response.Unauthorized(c, "unauthorized")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}
	role, err := h.repo.GetByID(c.Request.Context(), id)
	if err == nil && role.EstateID != nil && !p.IsAdmin {
		var member bool
		member, err = h.repo.IsMember(c.Request.Context(), *role.EstateID, p.UserID)
		if err == nil && !member {
			err = ErrNotFound
		}
	}
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "role not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to load role")
		return
	}
	response.OK(c, toResponse(role))
}
