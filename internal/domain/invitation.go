package domain

import (
	"strings"
	"time"
)

type Invitation struct {
	ID              string
	WorkspaceID     string
	InvitedByUserID string
	Email           string
	Role            Role
	Token           string
	AcceptedAt      *time.Time
	ExpiresAt       *time.Time
	CreatedAt       time.Time
}

type InvitationStatus string

const (
	InvitationValid    InvitationStatus = "valid"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
	InvitationMismatch InvitationStatus = "mismatch"
)

// StatusFor evaluates the invitation against the viewing user's email at
// the given instant. An empty email skips the mismatch check (anonymous
// token lookup).
func (i *Invitation) StatusFor(email string, now time.Time) InvitationStatus {
	if i.AcceptedAt != nil {
		return InvitationAccepted
	}
	if i.ExpiresAt != nil && i.ExpiresAt.Before(now) {
		return InvitationExpired
	}
	if email != "" && !strings.EqualFold(email, i.Email) {
		return InvitationMismatch
	}
	return InvitationValid
}
