package domain

import "time"

type Task struct {
	ID          string
	ColumnID    string
	UserID      string
	Title       string
	Description string
	Priority    string
	StartsAt    *time.Time
	EndsAt      *time.Time
	SortOrder   int
	IsCompleted bool
	CompletedAt *time.Time
	// OverdueNotifiedAt is a one-shot marker: once set it is never
	// cleared, even if the due date moves or the task reopens.
	OverdueNotifiedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsOverdue reports whether the task's due date has passed without
// completion and no overdue notification has been sent yet. The due
// instant is the end of the due date's day.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.IsCompleted || t.EndsAt == nil || t.OverdueNotifiedAt != nil {
		return false
	}
	due := EndOfDay(*t.EndsAt)
	return now.After(due)
}

// MarkCompleted sets the completion flag and timestamp.
func (t *Task) MarkCompleted(now time.Time) {
	t.IsCompleted = true
	completedAt := now
	t.CompletedAt = &completedAt
}

// ClearCompleted resets the completion flag and timestamp. Column
// membership wins over an explicit completion toggle once a move occurs.
func (t *Task) ClearCompleted() {
	t.IsCompleted = false
	t.CompletedAt = nil
}

// EndOfDay returns the last instant of the calendar day containing t,
// in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

type Assignee struct {
	TaskID           string
	UserID           string
	AssignedByUserID string
	AssignedAt       time.Time
}

type Label struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	CreatedAt time.Time
}

type Tag struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	CreatedAt time.Time
}
