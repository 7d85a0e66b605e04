package domain

import "time"

type Board struct {
	ID          string
	WorkspaceID string
	UserID      string
	Name        string
	Slug        string
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Column struct {
	ID        string
	BoardID   string
	UserID    string
	Name      string
	Slug      string
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// terminalColumnSlugs are the column slugs that carry "done" semantics:
// membership in one of these columns marks a task completed and stops its
// running timers.
var terminalColumnSlugs = map[string]bool{
	"done":       true,
	"concluido":  true,
	"concluida":  true,
	"concluidos": true,
	"concluidas": true,
}

// IsTerminalSlug reports whether a column slug denotes a terminal (done)
// column.
func IsTerminalSlug(slug string) bool {
	return terminalColumnSlugs[slug]
}

// IsTerminal reports whether the column carries done semantics.
func (c *Column) IsTerminal() bool {
	return IsTerminalSlug(c.Slug)
}
