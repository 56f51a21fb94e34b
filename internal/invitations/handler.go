package invitations

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eros-estates/backend/internal/identity"
	"github.com/eros-estates/backend/pkg/response"
)

// Issuer runs the send-invitations workflow.
type Issuer interface {
	Send(ctx context.Context, req SendRequest) (*Result, error)
}

// Decoder verifies invitation codes.
type Decoder interface {
	Decode(code string) (*Code, error)
}

// Handler handles invitation HTTP endpoints.
type Handler struct {
	issuer  Issuer
	decoder Decoder
	logger  *zap.Logger
}

// NewHandler creates an invitations handler.
func NewHandler(issuer Issuer, decoder Decoder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{issuer: issuer, decoder: decoder, logger: logger}
}

// SendInvitationsRequest is the body for POST /estates/:id/invitations.
// SenderID defaults to the caller; only admins may send on behalf of someone else.
type SendInvitationsRequest struct {
	RoleID   string   `json:"role_id" binding:"required,uuid"`
	SenderID string   `json:"sender_id" binding:"omitempty,uuid"`
	Emails   []string `json:"emails" binding:"required,min=1,dive,required"`
}

// Send handles POST /estates/:id/invitations.
func (h *Handler) Send(c *gin.Context) {
	estateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid estate id")
		return
	}
	policy := identity.FromGin(c)
	callerID, err := policy.CurrentUserID()
	if err != nil {
		response.Unauthorized(c, "unauthorized")
		return
	}
	var body SendInvitationsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	senderID := callerID
	if body.SenderID != "" {
		senderID = uuid.MustParse(body.SenderID)
		ok, err := policy.IsAdminOrSelf(senderID)
		if err != nil {
			response.Unauthorized(c, "unauthorized")
			return
		}
		if !ok {
			response.Forbidden(c, "cannot send invitations on behalf of another user")
			return
		}
	}

	result, err := h.issuer.Send(c.Request.Context(), SendRequest{
		EstateID: estateID,
		SenderID: senderID,
		RoleID:   uuid.MustParse(body.RoleID),
		Emails:   body.Emails,
	})
	switch {
	case errors.Is(err, ErrNotAMember):
		response.Forbidden(c, ErrNotAMember.Error())
	case errors.Is(err, ErrInsufficientPermissions):
		response.Forbidden(c, ErrInsufficientPermissions.Error())
	case errors.Is(err, ErrRoleNotFound):
		response.NotFound(c, ErrRoleNotFound.Error())
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrNoRecipients):
		response.BadRequest(c, err.Error())
	case err != nil:
		h.logger.Error("send invitations", zap.Error(err), zap.String("estate_id", estateID.String()))
		response.Internal(c, "failed to send invitations")
	default:
		response.Created(c, result)
	}
}

// Validate handles GET /invitations/:code. It verifies the code and returns what it carries.
func (h *Handler) Validate(c *gin.Context) {
	code, err := h.decoder.Decode(c.Param("code"))
	switch {
	case errors.Is(err, ErrCodeExpired):
		response.Fail(c, http.StatusGone, ErrCodeExpired.Error())
	case err != nil:
		response.BadRequest(c, ErrInvalidCode.Error())
	default:
		response.OK(c, gin.H{
			"invitation_id":   code.InvitationID,
			"email":           code.Email,
			"estate_id":       code.EstateID,
			"estate_name":     code.EstateName,
			"inviter_name":    code.InviterName,
			"role_name":       code.RoleName,
			"expiration_date": code.ExpirationDate,
		})
	}
}
