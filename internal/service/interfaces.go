package service

import (
	"context"
	"time"

	"github.com/classferreiracode/track-my-task/internal/domain"
)

// Notifier delivers notifications to recipients. Delivery is
// fire-and-forget: the core hands off the intent and never observes
// success or failure.
type Notifier interface {
	Notify(ctx context.Context, recipients []domain.Recipient, kind string, payload map[string]any)
}

// Broadcaster publishes real-time events on task- or board-scoped
// channels. Fire-and-forget, like Notifier.
type Broadcaster interface {
	Publish(ctx context.Context, channel, event string, payload map[string]any)
}

// Dispatcher records activity for lifecycle events and fans out
// notifications and broadcasts.
type Dispatcher interface {
	Dispatch(ctx context.Context, events []domain.Event)
}

type AccessService interface {
	// RoleOf returns the user's role in the workspace, or ErrNotPermitted
	// when no membership exists.
	RoleOf(ctx context.Context, userID, workspaceID string) (domain.Role, error)
	// RequireRole rejects with ErrNotPermitted unless the user holds one
	// of the allowed roles in the workspace.
	RequireRole(ctx context.Context, userID, workspaceID string, allowed ...domain.Role) error
	// CanJoinChannel gates real-time channels ("tasks.{id}", "boards.{id}")
	// by workspace membership. Exposed as a callback for the transport.
	CanJoinChannel(ctx context.Context, userID, channel string) (bool, error)
}

// GateContext carries the per-ability context the plan gate needs.
type GateContext struct {
	BoardID string
	UserID  string
}

// Usage is a snapshot of the workspace's quota-relevant counters.
type Usage struct {
	Members          int
	Boards           int
	ExportsThisMonth int
}

type PlanGate interface {
	// AssertCan allows the action or returns a *LimitExceededError. Usage
	// is computed from live state on every call; the gate holds no locks,
	// so two concurrent requests can both pass (accepted race).
	AssertCan(ctx context.Context, workspace *domain.Workspace, ability domain.Ability, gctx GateContext) error
	CurrentPlan(ctx context.Context, workspace *domain.Workspace) (*domain.Plan, error)
	Limits(ctx context.Context, workspace *domain.Workspace) (domain.LimitSet, error)
	Usage(ctx context.Context, workspace *domain.Workspace) (Usage, error)
}

// MemberUpdate carries optional membership changes; nil fields are left
// untouched.
type MemberUpdate struct {
	Role                  *domain.Role
	WeeklyCapacityMinutes *int
	IsActive              *bool
}

type WorkspaceService interface {
	// Create provisions the workspace with its owner membership and a
	// default board with backlog/in-progress/done columns.
	Create(ctx context.Context, actorID, name string) (*domain.Workspace, error)
	List(ctx context.Context, actorID string) ([]*domain.Workspace, error)
	Members(ctx context.Context, actorID, workspaceID string) ([]domain.Member, error)
	UpdateMember(ctx context.Context, actorID, workspaceID, userID string, upd MemberUpdate) error
	RemoveMember(ctx context.Context, actorID, workspaceID, userID string) error
	Leave(ctx context.Context, actorID, workspaceID string) error
}

type InvitationService interface {
	Invite(ctx context.Context, actorID, workspaceID, email string, role domain.Role) (*domain.Invitation, error)
	// Show looks up an invitation by token and evaluates its status for
	// the viewer's email (empty for anonymous lookups).
	Show(ctx context.Context, token, viewerEmail string) (*domain.Invitation, domain.InvitationStatus, error)
	Accept(ctx context.Context, actorID, token string) error
}

type BoardService interface {
	CreateBoard(ctx context.Context, actorID, workspaceID, name string) (*domain.Board, error)
	ListBoards(ctx context.Context, actorID, workspaceID string) ([]*domain.Board, error)
	DeleteBoard(ctx context.Context, actorID, boardID string) error
	CreateColumn(ctx context.Context, actorID, boardID, name string) (*domain.Column, error)
	ListColumns(ctx context.Context, actorID, boardID string) ([]*domain.Column, error)
}

// TaskCreate is the input for task creation. An empty ColumnID targets the
// first column of BoardID.
type TaskCreate struct {
	ColumnID    string
	BoardID     string
	Title       string
	Description string
	Priority    string
	StartsAt    *time.Time
	EndsAt      *time.Time
	Labels      []string
	Tags        []string
	Assignees   []string
}

// TaskUpdate carries optional task changes; nil fields are left untouched.
type TaskUpdate struct {
	ColumnID    *string
	Title       *string
	Description *string
	Priority    *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	IsCompleted *bool
	Labels      []string
	Tags        []string
	Assignees   []string
}

type TaskService interface {
	Create(ctx context.Context, actorID string, in TaskCreate) (*domain.Task, error)
	GetByID(ctx context.Context, actorID, taskID string) (*domain.Task, error)
	ListByBoard(ctx context.Context, actorID, boardID string) ([]*domain.Task, error)
	// RunningTimers reports the actor's open entry for each board task,
	// keyed by task id.
	RunningTimers(ctx context.Context, actorID, boardID string) (map[string]*domain.TimeEntry, error)
	Update(ctx context.Context, actorID, taskID string, in TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, actorID, taskID string) error

	StartTimer(ctx context.Context, actorID, taskID string) (*domain.TimeEntry, error)
	StopTimer(ctx context.Context, actorID, taskID string) (*domain.TimeEntry, error)
	// TrackedSeconds sums the task's entry contributions over the
	// half-open window [start, end).
	TrackedSeconds(ctx context.Context, actorID, taskID string, start, end time.Time) (int, error)
}

type OrderService interface {
	// ReorderColumns renumbers the given columns of a board 1-based in
	// list order. The id set must be complete and board-owned.
	ReorderColumns(ctx context.Context, actorID, boardID string, orderedIDs []string) error
	// ReorderTasks moves the given tasks into the column and renumbers
	// them 1-based in list order, applying terminal-column side effects
	// with a single shared timestamp. All-or-nothing.
	ReorderTasks(ctx context.Context, actorID, columnID string, orderedIDs []string) error
}

type CommentService interface {
	// Add stores the comment, resolves @mentions against workspace
	// members and notifies them. Returns the mentioned members.
	Add(ctx context.Context, actorID, taskID, body string) (*domain.Comment, []domain.Member, error)
	// List returns the task's comments and activity feed.
	List(ctx context.Context, actorID, taskID string) ([]*domain.Comment, []*domain.Activity, error)
}

type LabelService interface {
	CreateLabel(ctx context.Context, actorID, name, color string) (*domain.Label, error)
	ListLabels(ctx context.Context, actorID string) ([]*domain.Label, error)
	CreateTag(ctx context.Context, actorID, name, color string) (*domain.Tag, error)
	ListTags(ctx context.Context, actorID string) ([]*domain.Tag, error)
}

// ReportRow is one line of a time report export.
type ReportRow struct {
	TaskTitle string
	Status    string
	Day       string
	ClockIn   string
	ClockOut  string
	Minutes   float64
	Hours     float64
}

type ReportService interface {
	// Export computes the report rows for a board and date range,
	// recording an export-log row against the monthly quota.
	Export(ctx context.Context, actorID, boardID string, start, end time.Time) ([]ReportRow, error)
}
