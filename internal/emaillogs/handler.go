package emaillogs

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eros-estates/backend/internal/models"
	"github.com/eros-estates/backend/pkg/response"
)

// Lister reads email logs for an estate.
type Lister interface {
	ListByEstate(ctx context.Context, estateID uuid.UUID) ([]*models.EmailLog, error)
}

// Handler handles email log HTTP endpoints.
type Handler struct {
	repo Lister
}

// NewHandler creates an email logs handler.
func NewHandler(repo Lister) *Handler {
	return &Handler{repo: repo}
}

// ListByEstate handles GET /estates/:id/emails.
// Mount behind RequireAdmin; the handler does no access checks of its own.
func (h *Handler) ListByEstate(c *gin.Context) {
	estateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid estate id")
		return
	}
	logs, err := h.repo.ListByEstate(c.Request.Context(), estateID)
	if err != nil {
		response.Internal(c, "failed to load email logs")
		return
	}
	if logs == nil {
		logs = []*models.EmailLog{}
	}
	response.OK(c, logs)
}
