package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeEntryStop(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	entry := &TimeEntry{StartedAt: start}
	assert.True(t, entry.Running())

	// 75 minutes and 900 milliseconds: the fraction is floored away.
	entry.Stop(start.Add(75*time.Minute + 900*time.Millisecond))
	assert.False(t, entry.Running())
	assert.Equal(t, 4500, entry.DurationSeconds)
}

func TestTimeEntryWindowSeconds(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	stop := func(e *TimeEntry, at time.Time) *TimeEntry {
		e.Stop(at)
		return e
	}

	t.Run("fully inside", func(t *testing.T) {
		e := stop(&TimeEntry{StartedAt: day.Add(9 * time.Hour)}, day.Add(10*time.Hour))
		assert.Equal(t, 3600, e.WindowSeconds(day, next))
	})

	t.Run("clipped at both ends", func(t *testing.T) {
		e := stop(&TimeEntry{StartedAt: day.Add(-time.Hour)}, next.Add(time.Hour))
		assert.Equal(t, 86400, e.WindowSeconds(day, next))
	})

	t.Run("outside the window", func(t *testing.T) {
		e := stop(&TimeEntry{StartedAt: day.Add(-2 * time.Hour)}, day.Add(-time.Hour))
		assert.Zero(t, e.WindowSeconds(day, next))
	})

	t.Run("starts at window end", func(t *testing.T) {
		e := &TimeEntry{StartedAt: next}
		assert.Zero(t, e.WindowSeconds(day, next))
	})

	t.Run("running entry clips to end", func(t *testing.T) {
		e := &TimeEntry{StartedAt: day.Add(23 * time.Hour)}
		assert.Equal(t, 3600, e.WindowSeconds(day, next))
	})
}
