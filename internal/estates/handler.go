package estates

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eros-estates/backend/internal/identity"
	"github.com/eros-estates/backend/internal/models"
	"github.com/eros-estates/backend/pkg/response"
)

// Store is the estate persistence the handler needs.
type Store interface {
	GetByEstateAndUser(ctx context.Context, estateID, userID uuid.UUID) (*models.EstateUser, error)
	Create(ctx context.Context, e *models.Estate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Estate, error)
	Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*models.Estate, error)
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Estate, error)
	ListMembers(ctx context.Context, estateID uuid.UUID) ([]Member, error)
}

// Handler handles estate HTTP endpoints. Every endpoint evaluates the caller's
// claims before it reads estate data.
type Handler struct {
	repo   Store
	logger *zap.Logger
}

// NewHandler creates an estates handler.
func NewHandler(repo Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// CreateEstateRequest is the body for POST /estates.
type CreateEstateRequest struct {
	Name    string  `json:"name" binding:"required"`
	Address string  `json:"address" binding:"required"`
	LatLng  *string `json:"lat_lng"`
}

// UpdateEstateRequest is the body for PATCH /estates/:id.
type UpdateEstateRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	LatLng  *string `json:"lat_lng"`
}

// Create handles POST /estates. The caller becomes the estate's owner.
func (h *Handler) Create(c *gin.Context) {
	userID, err := identity.FromGin(c).CurrentUserID()
	if err != nil {
		response.Unauthorized(c, "unauthorized")
		return
	}
	var body CreateEstateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and address required")
		return
	}
	e := &models.Estate{
		Name:      strings.TrimSpace(body.Name),
		Address:   strings.TrimSpace(body.Address),
		LatLng:    body.LatLng,
		CreatedBy: userID,
	}
	if !e.Valid() {
		response.BadRequest(c, "name and address must not be blank")
		return
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("create estate", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to create estate")
		return
	}
	response.Created(c, e)
}

// Get handles GET /estates/:id. Requires membership or admin.
func (h *Handler) Get(c *gin.Context) {
	estateID, ok := h.authorizeMember(c)
	if !ok {
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), estateID)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "estate not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to load estate")
		return
	}
	response.OK(c, e)
}

// Update handles PATCH /estates/:id. Requires admin or the estate's creator.
func (h *Handler) Update(c *gin.Context) {
	e, ok := h.authorizeCreator(c)
	if !ok {
		return
	}
	var body UpdateEstateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p := UpdateParams{Name: trimmed(body.Name), Address: trimmed(body.Address), LatLng: body.LatLng}
	if (p.Name != nil && *p.Name == "") || (p.Address != nil && *p.Address == "") {
		response.BadRequest(c, "name and address must not be blank")
		return
	}
	updated, err := h.repo.Update(c.Request.Context(), e.ID, p)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "estate not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to update estate")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /estates/:id as a soft delete. Requires admin or the estate's creator.
func (h *Handler) Delete(c *gin.Context) {
	e, ok := h.authorizeCreator(c)
	if !ok {
		return
	}
	if err := h.repo.SoftDelete(c.Request.Context(), e.ID, time.Now().UTC()); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "estate not found")
			return
		}
		response.Internal(c, "failed to delete estate")
		return
	}
	response.NoContent(c)
}

// ListForUser handles GET /users/:id/estates. Requires admin or self.
func (h *Handler) ListForUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if !allow(c, func(p identity.Policy) (bool, error) { return p.IsAdminOrSelf(userID) }) {
		return
	}
	list, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load estates")
		return
	}
	response.OK(c, list)
}

// ListMembers handles GET /estates/:id/members. Requires membership or admin.
func (h *Handler) ListMembers(c *gin.Context) {
	estateID, ok := h.authorizeMember(c)
	if !ok {
		return
	}
	members, err := h.repo.ListMembers(c.Request.Context(), estateID)
	if err != nil {
		response.Internal(c, "failed to load members")
		return
	}
	response.OK(c, members)
}

// authorizeMember parses :id and lets admins and members of that estate through.
func (h *Handler) authorizeMember(c *gin.Context) (uuid.UUID, bool) {
	estateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid estate id")
		return uuid.Nil, false
	}
	ok := allow(c, func(p identity.Policy) (bool, error) {
		admin, err := p.IsAdmin()
		if err != nil || admin {
			return admin, err
		}
		userID, err := p.CurrentUserID()
		if err != nil {
			return false, err
		}
		_, err = h.repo.GetByEstateAndUser(c.Request.Context(), estateID, userID)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	})
	return estateID, ok
}

// authorizeCreator loads :id and lets admins and the estate's creator through.
// Callers who may not manage the estate get the same 404 as for a missing one.
func (h *Handler) authorizeCreator(c *gin.Context) (*models.Estate, bool) {
	estateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid estate id")
		return nil, false
	}
	p, err := identity.Resolve(identity.ClaimsFrom(c))
	if err != nil {
		response.Unauthorized(c, "unauthorized")
		return nil, false
	}
	e, err := h.repo.GetByID(c.Request.Context(), estateID)
	if err == nil && !p.IsAdmin && e.CreatedBy != p.UserID {
		err = ErrNotFound
	}
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "estate not found")
		return nil, false
	}
	if err != nil {
		response.Internal(c, "failed to load estate")
		return nil, false
	}
	return e, true
}

// allow runs check against the request's policy and writes 401/403/500 when it does not pass.
func allow(c *gin.Context, check func(identity.Policy) (bool, error)) bool {
	ok, err := check(identity.FromGin(c))
	switch {
	case errors.Is(err, identity.ErrUnauthorized):
		response.Unauthorized(c, "unauthorized")
		return false
	case err != nil:
		response.Internal(c, "failed to authorize request")
		return false
	case !ok:
		response.Forbidden(c, "not authorized for this estate")
		return false
	}
	return true
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
