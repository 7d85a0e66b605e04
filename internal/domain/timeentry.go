package domain

import "time"

type TimeEntry struct {
	ID              string
	TaskID          string
	UserID          string
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationSeconds int
	CreatedAt       time.Time
}

// Running reports whether the entry has not been stopped yet.
func (e *TimeEntry) Running() bool {
	return e.EndedAt == nil
}

// Stop closes the entry at the given instant. Duration is the elapsed
// whole seconds, floored.
func (e *TimeEntry) Stop(now time.Time) {
	endedAt := now
	e.EndedAt = &endedAt
	e.DurationSeconds = int(now.Sub(e.StartedAt) / time.Second)
}

// WindowSeconds returns the entry's contribution, in whole seconds, to the
// half-open window [start, end). A running entry is clipped to the window;
// callers pass end = now for current windows.
func (e *TimeEntry) WindowSeconds(start, end time.Time) int {
	if !e.StartedAt.Before(end) {
		return 0
	}
	effectiveStart := e.StartedAt
	if effectiveStart.Before(start) {
		effectiveStart = start
	}
	effectiveEnd := end
	if e.EndedAt != nil && e.EndedAt.Before(end) {
		effectiveEnd = *e.EndedAt
	}
	if !effectiveStart.Before(effectiveEnd) {
		return 0
	}
	return int(effectiveEnd.Sub(effectiveStart) / time.Second)
}
