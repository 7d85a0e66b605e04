package repository

import (
	"context"
	"time"

	"github.com/classferreiracode/track-my-task/internal/domain"
)

// TaskWithWorkspace is a joined view of a task with its board and
// workspace context, used by the ordering engine for cross-tenant
// validation.
type TaskWithWorkspace struct {
	Task        domain.Task
	BoardID     string
	WorkspaceID string
}

// ReportEntry is a finished time entry joined with its task and column,
// used to build export rows.
type ReportEntry struct {
	Entry      domain.TimeEntry
	TaskTitle  string
	ColumnName string
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type WorkspaceRepo interface {
	Create(ctx context.Context, w *domain.Workspace) error
	GetByID(ctx context.Context, id string) (*domain.Workspace, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Workspace, error)
	Update(ctx context.Context, w *domain.Workspace) error
	Delete(ctx context.Context, id string) error
}

type MembershipRepo interface {
	Create(ctx context.Context, m *domain.Membership) error
	Get(ctx context.Context, workspaceID, userID string) (*domain.Membership, error)
	Update(ctx context.Context, m *domain.Membership) error
	Delete(ctx context.Context, workspaceID, userID string) error
	ListMembers(ctx context.Context, workspaceID string) ([]domain.Member, error)
	CountByWorkspace(ctx context.Context, workspaceID string) (int, error)
}

type InvitationRepo interface {
	Create(ctx context.Context, i *domain.Invitation) error
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)
	Update(ctx context.Context, i *domain.Invitation) error
	HasPending(ctx context.Context, workspaceID, email string, now time.Time) (bool, error)
}

type BoardRepo interface {
	Create(ctx context.Context, b *domain.Board) error
	GetByID(ctx context.Context, id string) (*domain.Board, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Board, error)
	SlugExists(ctx context.Context, workspaceID, slug string) (bool, error)
	MaxSortOrder(ctx context.Context, workspaceID string) (int, error)
	CountByWorkspace(ctx context.Context, workspaceID string) (int, error)
	Delete(ctx context.Context, id string) error
}

type ColumnRepo interface {
	Create(ctx context.Context, c *domain.Column) error
	GetByID(ctx context.Context, id string) (*domain.Column, error)
	ListByBoard(ctx context.Context, boardID string) ([]*domain.Column, error)
	ListByIDs(ctx context.Context, boardID string, ids []string) ([]*domain.Column, error)
	FirstByBoard(ctx context.Context, boardID string) (*domain.Column, error)
	SlugExists(ctx context.Context, boardID, slug string) (bool, error)
	MaxSortOrder(ctx context.Context, boardID string) (int, error)
	UpdateSortOrder(ctx context.Context, id string, sortOrder int) error
	Delete(ctx context.Context, id string) error
	// WorkspaceID resolves the owning workspace through the column's board.
	WorkspaceID(ctx context.Context, columnID string) (string, error)
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByColumn(ctx context.Context, columnID string) ([]*domain.Task, error)
	ListByBoard(ctx context.Context, boardID string) ([]*domain.Task, error)
	ListByIDsWithWorkspace(ctx context.Context, ids []string) ([]TaskWithWorkspace, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
	MaxSortOrder(ctx context.Context, columnID string) (int, error)
	CountByBoard(ctx context.Context, boardID string) (int, error)
	// WorkspaceID resolves the owning workspace through column and board.
	WorkspaceID(ctx context.Context, taskID string) (string, error)
	BoardID(ctx context.Context, taskID string) (string, error)

	ReplaceAssignees(ctx context.Context, taskID string, assignees []domain.Assignee) error
	ListAssignees(ctx context.Context, taskID string) ([]domain.Member, error)
	ReplaceLabels(ctx context.Context, taskID string, labelIDs []string) error
	ListLabels(ctx context.Context, taskID string) ([]*domain.Label, error)
	ReplaceTags(ctx context.Context, taskID string, tagIDs []string) error
	ListTags(ctx context.Context, taskID string) ([]*domain.Tag, error)
}

type TimeEntryRepo interface {
	Create(ctx context.Context, e *domain.TimeEntry) error
	GetByID(ctx context.Context, id string) (*domain.TimeEntry, error)
	Update(ctx context.Context, e *domain.TimeEntry) error
	ListByTask(ctx context.Context, taskID string) ([]*domain.TimeEntry, error)
	ActiveForTaskUser(ctx context.Context, taskID, userID string) (*domain.TimeEntry, error)
	ActiveForTask(ctx context.Context, taskID string) ([]*domain.TimeEntry, error)
	ListRunningForTasks(ctx context.Context, taskIDs []string, userID string) ([]*domain.TimeEntry, error)
	CountRunningByUserInWorkspace(ctx context.Context, workspaceID, userID string) (int, error)
	ListFinishedForBoard(ctx context.Context, boardID, userID string, start, end time.Time) ([]ReportEntry, error)
}

type LabelRepo interface {
	CreateLabel(ctx context.Context, l *domain.Label) error
	ListLabelsByUser(ctx context.Context, userID string) ([]*domain.Label, error)
	CreateTag(ctx context.Context, t *domain.Tag) error
	ListTagsByUser(ctx context.Context, userID string) ([]*domain.Tag, error)
}

type CommentRepo interface {
	Create(ctx context.Context, c *domain.Comment) error
	ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error)
	ReplaceMentions(ctx context.Context, commentID string, userIDs []string) error
	ListMentions(ctx context.Context, commentID string) ([]domain.Member, error)
}

type ActivityRepo interface {
	Create(ctx context.Context, a *domain.Activity) error
	ListByTask(ctx context.Context, taskID string) ([]*domain.Activity, error)
}

type PlanRepo interface {
	GetByKey(ctx context.Context, key string) (*domain.Plan, error)
	EnsurePlan(ctx context.Context, key, name, description string) (*domain.Plan, error)
	UpsertLimit(ctx context.Context, planID, limitKey string, limitValue *int) error
	LimitsForPlan(ctx context.Context, planID string) (domain.LimitSet, error)
	GetSubscription(ctx context.Context, workspaceID string) (*domain.WorkspaceSubscription, error)
	SetSubscription(ctx context.Context, s *domain.WorkspaceSubscription) error
}

type ExportLogRepo interface {
	Create(ctx context.Context, l *domain.ExportLog) error
	CountForWorkspaceBetween(ctx context.Context, workspaceID string, start, end time.Time) (int, error)
}
