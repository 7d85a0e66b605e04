package domain

import "time"

type Workspace struct {
	ID          string
	OwnerUserID string
	Name        string
	Slug        string
	// Plan is the inline plan key, used when no subscription row exists.
	Plan      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Membership struct {
	ID                    string
	WorkspaceID           string
	UserID                string
	Role                  Role
	WeeklyCapacityMinutes *int
	IsActive              bool
	JoinedAt              *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Member is a membership joined with its user, as listed to callers and
// used for mention resolution.
type Member struct {
	UserID                string
	Name                  string
	Email                 string
	Role                  Role
	WeeklyCapacityMinutes *int
	IsActive              bool
}

type WorkspaceSubscription struct {
	ID          string
	WorkspaceID string
	PlanKey     string
	CreatedAt   time.Time
}
