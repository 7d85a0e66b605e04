package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/repository"
	"github.com/google/uuid"
)

const invitationTTL = 7 * 24 * time.Hour

type invitationService struct {
	uow         db.UnitOfWork
	users       repository.UserRepo
	workspaces  repository.WorkspaceRepo
	memberships repository.MembershipRepo
	invitations repository.InvitationRepo
	access      AccessService
	gate        PlanGate
	notifier    Notifier
}

func NewInvitationService(
	uow db.UnitOfWork,
	users repository.UserRepo,
	workspaces repository.WorkspaceRepo,
	memberships repository.MembershipRepo,
	invitations repository.InvitationRepo,
	access AccessService,
	gate PlanGate,
	notifier Notifier,
) InvitationService {
	return &invitationService{
		uow:         uow,
		users:       users,
		workspaces:  workspaces,
		memberships: memberships,
		invitations: invitations,
		access:      access,
		gate:        gate,
		notifier:    notifier,
	}
}

func (s *invitationService) Invite(ctx context.Context, actorID, workspaceID, email string, role domain.Role) (*domain.Invitation, error) {
	if err := s.access.RequireRole(ctx, actorID, workspaceID, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, NewValidationError("email", "must be a valid email address")
	}
	if role == domain.RoleOwner || !domain.ValidRoles[string(role)] {
		return nil, NewValidationError("role", "must be one of admin, editor, member, viewer")
	}

	workspace, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.AssertCan(ctx, workspace, domain.AbilityInviteMember, GateContext{}); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if user, err := s.users.GetByEmail(ctx, email); err == nil {
		if _, err := s.memberships.Get(ctx, workspaceID, user.ID); err == nil {
			return nil, ErrAlreadyMember
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	pending, err := s.invitations.HasPending(ctx, workspaceID, email, now)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrInvitePending
	}

	expiresAt := now.Add(invitationTTL)
	invitation := &domain.Invitation{
		ID:              uuid.New().String(),
		WorkspaceID:     workspaceID,
		InvitedByUserID: actorID,
		Email:           email,
		Role:            role,
		Token:           newInvitationToken(),
		ExpiresAt:       &expiresAt,
		CreatedAt:       now,
	}
	if err := s.invitations.Create(ctx, invitation); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx,
		[]domain.Recipient{{Email: email}},
		"workspace_invitation",
		map[string]any{
			"workspace_id":   workspaceID,
			"workspace_name": workspace.Name,
			"role":           string(role),
			"token":          invitation.Token,
		},
	)
	return invitation, nil
}

func (s *invitationService) Show(ctx context.Context, token, viewerEmail string) (*domain.Invitation, domain.InvitationStatus, error) {
	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvitationNotFound
		}
		return nil, "", err
	}
	return invitation, invitation.StatusFor(viewerEmail, time.Now().UTC()), nil
}

func (s *invitationService) Accept(ctx context.Context, actorID, token string) error {
	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvitationNotFound
		}
		return err
	}
	user, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	switch invitation.StatusFor(user.Email, now) {
	case domain.InvitationAccepted, domain.InvitationExpired:
		return ErrInvitationExpired
	case domain.InvitationMismatch:
		return ErrInvitationMismatch
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		memberships := repository.NewSQLiteMembershipRepo(tx)
		invitations := repository.NewSQLiteInvitationRepo(tx)

		_, err := memberships.Get(ctx, invitation.WorkspaceID, user.ID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			joinedAt := now
			if err := memberships.Create(ctx, &domain.Membership{
				ID:          uuid.New().String(),
				WorkspaceID: invitation.WorkspaceID,
				UserID:      user.ID,
				Role:        invitation.Role,
				IsActive:    true,
				JoinedAt:    &joinedAt,
				CreatedAt:   now,
				UpdatedAt:   now,
			}); err != nil {
				return err
			}
		case err != nil:
			return err
		}

		acceptedAt := now
		invitation.AcceptedAt = &acceptedAt
		return invitations.Update(ctx, invitation)
	})
}

func newInvitationToken() string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(buf)
}
