// Package invitations issues estate invitations: it checks the sender's
// membership and delegation rights, mints one signed code per recipient, and
// dispatches the results.
package invitations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eros-estates/backend/internal/estates"
	"github.com/eros-estates/backend/internal/models"
	"github.com/eros-estates/backend/internal/roles"
)

// MembershipReader looks up a membership by its composite key. Absence is estates.ErrNotFound.
type MembershipReader interface {
	GetByEstateAndUser(ctx context.Context, estateID, userID uuid.UUID) (*models.EstateUser, error)
}

// RoleReader looks up roles and checks permission containment. Absence is roles.ErrNotFound.
type RoleReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	HasPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) (bool, error)
}

// Store persists a minted batch. All or nothing.
type Store interface {
	CreateBatch(ctx context.Context, invitations []models.Invitation) error
}

// SendRequest is the input of one send-invitations call.
type SendRequest struct {
	EstateID uuid.UUID
	SenderID uuid.UUID
	RoleID   uuid.UUID
	Emails   []string
}

// Result reports the minted invitations and how each delivery went.
// Degraded is true when at least one delivery failed.
type Result struct {
	Invitations []models.Invitation `json:"invitations"`
	Deliveries  []Delivery          `json:"deliveries"`
	Degraded    bool                `json:"degraded"`
}

// Service runs the send-invitations workflow.
type Service struct {
	members    MembershipReader
	roles      RoleReader
	store      Store
	minter     *Minter
	dispatcher *Dispatcher
	retry      RetryPolicy
	logger     *zap.Logger
}

// NewService wires the workflow. store may be nil, in which case minted invitations are not persisted.
func NewService(members MembershipReader, roleReader RoleReader, store Store, minter *Minter, dispatcher *Dispatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		members:    members,
		roles:      roleReader,
		store:      store,
		minter:     minter,
		dispatcher: dispatcher,
		retry:      DefaultRetryPolicy,
		logger:     logger,
	}
}

// WithRetryPolicy overrides the read retry policy.
func (s *Service) WithRetryPolicy(p RetryPolicy) *Service {
	s.retry = p
	return s
}

// Send validates the sender, mints one invitation per email and dispatches them.
// Precondition failures abort before anything is minted. Delivery failures
// never fail the call; they show up in Result.Deliveries.
func (s *Service) Send(ctx context.Context, req SendRequest) (*Result, error) {
	fields := []zap.Field{
		zap.String("estate_id", req.EstateID.String()),
		zap.String("sender_id", req.SenderID.String()),
		zap.String("role_id", req.RoleID.String()),
	}

	sender, role, err := s.resolve(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAMember):
			s.logger.Error("user is not a member of the estate", fields...)
		case errors.Is(err, ErrRoleNotFound):
			s.logger.Error("the role does not exist", fields...)
		}
		return nil, err
	}

	ok, err := s.roles.HasPermissions(ctx, sender.RoleID, role.PermissionIDs())
	if err != nil {
		return nil, fmt.Errorf("check delegation rights: %w", err)
	}
	if !ok {
		// users can only assign roles with permissions they hold
		s.logger.Error("user does not have the required permissions to assign the role", fields...)
		return nil, ErrInsufficientPermissions
	}

	invitations, payload, err := s.minter.Mint(Batch{
		EstateID: req.EstateID,
		SenderID: req.SenderID,
		RoleID:   req.RoleID,
		Sender:   sender,
		Role:     role,
		Emails:   req.Emails,
	})
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.CreateBatch(ctx, invitations); err != nil {
			return nil, fmt.Errorf("store invitations: %w", err)
		}
	}

	s.logger.Info("sending invitation emails", append(fields, zap.Int("count", len(invitations)))...)
	deliveries := s.dispatcher.Dispatch(ctx, invitations, payload)
	return &Result{
		Invitations: invitations,
		Deliveries:  deliveries,
		Degraded:    Degraded(deliveries),
	}, nil
}

// resolve reads the sender's membership and the target role concurrently.
// A missing membership wins over a missing role, so neither read cancels the other.
func (s *Service) resolve(ctx context.Context, req SendRequest) (*models.EstateUser, *models.Role, error) {
	var (
		sender             *models.EstateUser
		role               *models.Role
		senderErr, roleErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		sender, senderErr = retryRead(ctx, s.retry, func(ctx context.Context) (*models.EstateUser, error) {
			return s.members.GetByEstateAndUser(ctx, req.EstateID, req.SenderID)
		}, estates.ErrNotFound)
		return senderErr
	})
	g.Go(func() error {
		role, roleErr = retryRead(ctx, s.retry, func(ctx context.Context) (*models.Role, error) {
			return s.roles.GetByID(ctx, req.RoleID)
		}, roles.ErrNotFound)
		return roleErr
	})
	_ = g.Wait()

	switch {
	case errors.Is(senderErr, estates.ErrNotFound) || (senderErr == nil && sender == nil):
		return nil, nil, ErrNotAMember
	case senderErr != nil:
		return nil, nil, fmt.Errorf("load membership: %w", senderErr)
	case errors.Is(roleErr, roles.ErrNotFound) || (roleErr == nil && role == nil):
		return nil, nil, ErrRoleNotFound
	case roleErr != nil:
		return nil, nil, fmt.Errorf("load role: %w", roleErr)
	case !role.AssignableIn(req.EstateID):
		// another estate's role is invisible here
		return nil, nil, ErrRoleNotFound
	}
	return sender, role, nil
}
