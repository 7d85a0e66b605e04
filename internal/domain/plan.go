package domain

import "time"

type Plan struct {
	ID          string
	Key         string
	Name        string
	Description string
	CreatedAt   time.Time
}

type PlanLimit struct {
	ID         string
	PlanID     string
	LimitKey   string
	LimitValue *int // nil = unlimited
}

// LimitSet maps limit keys to values. A nil value means unlimited.
type LimitSet map[string]*int

// Value returns the effective limit for key. The second return is false
// when the limit is unlimited (absent or explicitly nil).
func (s LimitSet) Value(key string) (int, bool) {
	v, ok := s[key]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// Has reports whether the plan carries a row for key at all, even one
// whose value is nil. Callers use it to tell an explicit unlimited grant
// apart from a key the plan never mentions.
func (s LimitSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

type ExportLog struct {
	ID          string
	WorkspaceID string
	UserID      string
	BoardID     string
	ExportedAt  time.Time
}
