package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/testutil"
)

func TestInvite_CreatesTokenAndNotifies(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	invitation, err := e.invitationSvc.Invite(ctx, fx.Owner.ID, fx.WS.ID, "Novo@Example.com", domain.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, "novo@example.com", invitation.Email, "email is normalized")
	assert.NotEmpty(t, invitation.Token)
	require.NotNil(t, invitation.ExpiresAt)
	assert.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), *invitation.ExpiresAt, time.Minute)

	calls := e.notifier.callsOfKind("workspace_invitation")
	require.Len(t, calls, 1)
	assert.Equal(t, invitation.Token, calls[0].Payload["token"])
}

func TestInvite_MemberRoleCannotInvite(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	member := e.addMember(t, fx.WS, "Member", domain.RoleMember)

	_, err := e.invitationSvc.Invite(context.Background(), member.ID, fx.WS.ID, "x@example.com", domain.RoleMember)
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestInvite_ExistingMemberConflicts(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	member := e.addMember(t, fx.WS, "Member", domain.RoleMember)

	_, err := e.invitationSvc.Invite(context.Background(), fx.Owner.ID, fx.WS.ID, member.Email, domain.RoleMember)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestInvite_PendingInviteConflicts(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	_, err := e.invitationSvc.Invite(ctx, fx.Owner.ID, fx.WS.ID, "dup@example.com", domain.RoleMember)
	require.NoError(t, err)

	_, err = e.invitationSvc.Invite(ctx, fx.Owner.ID, fx.WS.ID, "dup@example.com", domain.RoleMember)
	assert.ErrorIs(t, err, ErrInvitePending)
}

func TestInvite_OwnerRoleRejected(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)

	_, err := e.invitationSvc.Invite(context.Background(), fx.Owner.ID, fx.WS.ID, "x@example.com", domain.RoleOwner)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestInvite_PlanLimitOnMembers(t *testing.T) {
	e := newEnv(t)
	e.seedFreePlan(t)
	fx := e.seedWorkspace(t)
	e.addMember(t, fx.WS, "Second", domain.RoleMember)
	e.addMember(t, fx.WS, "Third", domain.RoleMember)

	_, err := e.invitationSvc.Invite(context.Background(), fx.Owner.ID, fx.WS.ID, "fourth@example.com", domain.RoleMember)
	limitErr, ok := IsLimitExceeded(err)
	require.True(t, ok)
	assert.Equal(t, domain.LimitMaxMembers, limitErr.LimitKey)
	assert.Equal(t, 3, limitErr.LimitValue)
	assert.Equal(t, 3, limitErr.CurrentValue)
}

func TestAcceptInvitation_CreatesMembership(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	invitee := testutil.NewTestUser("Invitee", testutil.WithEmail("invitee@example.com"))
	require.NoError(t, e.users.Create(ctx, invitee))

	invitation, err := e.invitationSvc.Invite(ctx, fx.Owner.ID, fx.WS.ID, invitee.Email, domain.RoleEditor)
	require.NoError(t, err)

	require.NoError(t, e.invitationSvc.Accept(ctx, invitee.ID, invitation.Token))

	m, err := e.memberships.Get(ctx, fx.WS.ID, invitee.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEditor, m.Role)
	assert.True(t, m.IsActive)

	stored, status, err := e.invitationSvc.Show(ctx, invitation.Token, invitee.Email)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationAccepted, status)
	require.NotNil(t, stored.AcceptedAt)
}

func TestAcceptInvitation_SecondAcceptRejected(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	invitee := testutil.NewTestUser("Invitee", testutil.WithEmail("twice@example.com"))
	require.NoError(t, e.users.Create(ctx, invitee))

	invitation, err := e.invitationSvc.Invite(ctx, fx.Owner.ID, fx.WS.ID, invitee.Email, domain.RoleMember)
	require.NoError(t, err)
	require.NoError(t, e.invitationSvc.Accept(ctx, invitee.ID, invitation.Token))

	err = e.invitationSvc.Accept(ctx, invitee.ID, invitation.Token)
	assert.ErrorIs(t, err, ErrInvitationExpired)
}

func TestAcceptInvitation_EmailMismatch(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	stranger := testutil.NewTestUser("Stranger", testutil.WithEmail("stranger@example.com"))
	require.NoError(t, e.users.Create(ctx, stranger))

	invitation, err := e.invitationSvc.Invite(ctx, fx.Owner.ID, fx.WS.ID, "someoneelse@example.com", domain.RoleMember)
	require.NoError(t, err)

	err = e.invitationSvc.Accept(ctx, stranger.ID, invitation.Token)
	assert.ErrorIs(t, err, ErrInvitationMismatch)
}

func TestShowInvitation_UnknownToken(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.invitationSvc.Show(context.Background(), "no-such-token", "")
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestShowInvitation_ExpiredStatus(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	expired := time.Now().UTC().Add(-time.Hour)
	invitation := &domain.Invitation{
		ID:              "inv-1",
		WorkspaceID:     fx.WS.ID,
		InvitedByUserID: fx.Owner.ID,
		Email:           "late@example.com",
		Role:            domain.RoleMember,
		Token:           "expired-token",
		ExpiresAt:       &expired,
		CreatedAt:       time.Now().UTC().Add(-8 * 24 * time.Hour),
	}
	require.NoError(t, e.invitations.Create(ctx, invitation))

	_, status, err := e.invitationSvc.Show(ctx, "expired-token", "late@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationExpired, status)
}
