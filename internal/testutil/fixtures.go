package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/classferreiracode/track-my-task/internal/domain"
)

var testEmailCounter atomic.Int64

// User options
type UserOption func(*domain.User)

func WithEmail(email string) UserOption {
	return func(u *domain.User) {
		u.Email = email
	}
}

func NewTestUser(name string, opts ...UserOption) *domain.User {
	n := testEmailCounter.Add(1)
	u := &domain.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     fmt.Sprintf("user%d@example.com", n),
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Workspace options
type WorkspaceOption func(*domain.Workspace)

func WithPlan(plan string) WorkspaceOption {
	return func(w *domain.Workspace) {
		w.Plan = plan
	}
}

func NewTestWorkspace(ownerID, name string, opts ...WorkspaceOption) *domain.Workspace {
	now := time.Now().UTC()
	w := &domain.Workspace{
		ID:          uuid.New().String(),
		OwnerUserID: ownerID,
		Name:        name,
		Slug:        domain.Slugify(name),
		Plan:        domain.DefaultPlanKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Membership options
type MembershipOption func(*domain.Membership)

func WithRole(role domain.Role) MembershipOption {
	return func(m *domain.Membership) {
		m.Role = role
	}
}

func WithInactive() MembershipOption {
	return func(m *domain.Membership) {
		m.IsActive = false
	}
}

func NewTestMembership(workspaceID, userID string, opts ...MembershipOption) *domain.Membership {
	now := time.Now().UTC()
	joined := now
	m := &domain.Membership{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        domain.RoleMember,
		IsActive:    true,
		JoinedAt:    &joined,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func NewTestBoard(workspaceID, userID, name string) *domain.Board {
	now := time.Now().UTC()
	return &domain.Board{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Name:        name,
		Slug:        domain.Slugify(name),
		SortOrder:   1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Column options
type ColumnOption func(*domain.Column)

func WithColumnSlug(slug string) ColumnOption {
	return func(c *domain.Column) {
		c.Slug = slug
	}
}

func WithColumnSortOrder(n int) ColumnOption {
	return func(c *domain.Column) {
		c.SortOrder = n
	}
}

func NewTestColumn(boardID, userID, name string, opts ...ColumnOption) *domain.Column {
	now := time.Now().UTC()
	c := &domain.Column{
		ID:        uuid.New().String(),
		BoardID:   boardID,
		UserID:    userID,
		Name:      name,
		Slug:      domain.Slugify(name),
		SortOrder: 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Task options
type TaskOption func(*domain.Task)

func WithSortOrder(n int) TaskOption {
	return func(t *domain.Task) {
		t.SortOrder = n
	}
}

func WithDueDate(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.EndsAt = &d
	}
}

func WithCompleted(at time.Time) TaskOption {
	return func(t *domain.Task) {
		t.IsCompleted = true
		t.CompletedAt = &at
	}
}

func NewTestTask(columnID, userID, title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		ID:        uuid.New().String(),
		ColumnID:  columnID,
		UserID:    userID,
		Title:     title,
		SortOrder: 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TimeEntry options
type EntryOption func(*domain.TimeEntry)

func WithStartedAt(t time.Time) EntryOption {
	return func(e *domain.TimeEntry) {
		e.StartedAt = t
	}
}

func WithStopped(endedAt time.Time) EntryOption {
	return func(e *domain.TimeEntry) {
		e.Stop(endedAt)
	}
}

func NewTestEntry(taskID, userID string, opts ...EntryOption) *domain.TimeEntry {
	now := time.Now().UTC()
	e := &domain.TimeEntry{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		UserID:    userID,
		StartedAt: now,
		CreatedAt: now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func NewTestComment(taskID, userID, body string) *domain.Comment {
	return &domain.Comment{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		UserID:    userID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}
