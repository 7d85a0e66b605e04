package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPermitted indicates a role check failed. Workspace-scoped
	// resources surface it as "not found" so existence is not leaked to
	// non-members.
	ErrNotPermitted = errors.New("not permitted")

	// ErrTimerAlreadyRunning indicates the acting user already has a
	// running entry on the task.
	ErrTimerAlreadyRunning = errors.New("timer already running for this task")

	// ErrNoRunningTimer indicates a stop was requested with no running
	// entry for the acting user on the task.
	ErrNoRunningTimer = errors.New("no running timer to stop")

	// ErrAlreadyMember indicates an invitation targets an existing member.
	ErrAlreadyMember = errors.New("user is already a member")

	// ErrInvitePending indicates an unexpired, unaccepted invitation
	// already exists for the email.
	ErrInvitePending = errors.New("invitation already pending")

	// ErrInvitationNotFound indicates the invitation token is unknown.
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrInvitationExpired indicates the invitation can no longer be
	// accepted (expired or already consumed).
	ErrInvitationExpired = errors.New("invitation expired or already accepted")

	// ErrInvitationMismatch indicates the accepting user's email does not
	// match the invited address.
	ErrInvitationMismatch = errors.New("invitation addressed to a different email")

	// ErrOwnerImmutable guards the owner membership: the owner role cannot
	// be changed by others, and the owner cannot be removed or leave.
	ErrOwnerImmutable = errors.New("owner membership cannot be changed")

	// ErrDuplicateName indicates a board or column with the same slug
	// already exists in its container.
	ErrDuplicateName = errors.New("name already in use")
)

// ValidationError reports malformed input with a field-level message.
// Always recoverable, never retried automatically.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-level validation failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// LimitExceededError is the structured, recoverable condition raised by the
// plan gate. It carries enough data for the caller to render an upgrade
// prompt; it is distinct from generic validation.
type LimitExceededError struct {
	LimitKey     string
	LimitValue   int
	CurrentValue int
	UpgradeURL   string
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("plan limit %s reached (%d/%d)", e.LimitKey, e.CurrentValue, e.LimitValue)
}

// IsLimitExceeded reports whether err is a plan-limit rejection and
// returns the structured condition when it is.
func IsLimitExceeded(err error) (*LimitExceededError, bool) {
	var limitErr *LimitExceededError
	if errors.As(err, &limitErr) {
		return limitErr, true
	}
	return nil, false
}
