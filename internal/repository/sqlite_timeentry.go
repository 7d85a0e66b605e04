package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
)

const timeEntryColumns = `id, task_id, user_id, started_at, ended_at, duration_seconds, created_at`

// SQLiteTimeEntryRepo implements TimeEntryRepo using a SQLite database.
type SQLiteTimeEntryRepo struct {
	db db.DBTX
}

// NewSQLiteTimeEntryRepo creates a new SQLiteTimeEntryRepo.
func NewSQLiteTimeEntryRepo(conn db.DBTX) *SQLiteTimeEntryRepo {
	return &SQLiteTimeEntryRepo{db: conn}
}

func (r *SQLiteTimeEntryRepo) Create(ctx context.Context, e *domain.TimeEntry) error {
	query := `INSERT INTO time_entries (` + timeEntryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.TaskID, e.UserID,
		e.StartedAt.Format(time.RFC3339),
		nullableTimeToString(e.EndedAt, time.RFC3339),
		e.DurationSeconds,
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting time entry: %w", err)
	}
	return nil
}

func (r *SQLiteTimeEntryRepo) GetByID(ctx context.Context, id string) (*domain.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+timeEntryColumns+` FROM time_entries WHERE id = ?`, id)
	return r.scanEntry(row)
}

func (r *SQLiteTimeEntryRepo) Update(ctx context.Context, e *domain.TimeEntry) error {
	query := `UPDATE time_entries SET ended_at = ?, duration_seconds = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		nullableTimeToString(e.EndedAt, time.RFC3339), e.DurationSeconds, e.ID)
	if err != nil {
		return fmt.Errorf("updating time entry: %w", err)
	}
	return nil
}

func (r *SQLiteTimeEntryRepo) ListByTask(ctx context.Context, taskID string) ([]*domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries
		WHERE task_id = ? ORDER BY started_at`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing time entries by task: %w", err)
	}
	defer rows.Close()
	return r.scanEntries(rows)
}

func (r *SQLiteTimeEntryRepo) ActiveForTaskUser(ctx context.Context, taskID, userID string) (*domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries
		WHERE task_id = ? AND user_id = ? AND ended_at IS NULL
		LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, taskID, userID)
	return r.scanEntry(row)
}

func (r *SQLiteTimeEntryRepo) ActiveForTask(ctx context.Context, taskID string) ([]*domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries
		WHERE task_id = ? AND ended_at IS NULL
		ORDER BY started_at`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing active entries: %w", err)
	}
	defer rows.Close()
	return r.scanEntries(rows)
}

func (r *SQLiteTimeEntryRepo) ListRunningForTasks(ctx context.Context, taskIDs []string, userID string) ([]*domain.TimeEntry, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries
		WHERE user_id = ? AND ended_at IS NULL
		  AND task_id IN (` + sqlPlaceholders(len(taskIDs)) + `)`
	args := make([]any, 0, len(taskIDs)+1)
	args = append(args, userID)
	for _, id := range taskIDs {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing running entries for tasks: %w", err)
	}
	defer rows.Close()
	return r.scanEntries(rows)
}

func (r *SQLiteTimeEntryRepo) CountRunningByUserInWorkspace(ctx context.Context, workspaceID, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM time_entries e
		JOIN tasks t ON t.id = e.task_id
		JOIN columns c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		WHERE e.user_id = ? AND e.ended_at IS NULL AND b.workspace_id = ?`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, workspaceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting running entries: %w", err)
	}
	return count, nil
}

func (r *SQLiteTimeEntryRepo) ListFinishedForBoard(ctx context.Context, boardID, userID string, start, end time.Time) ([]ReportEntry, error) {
	query := `SELECT e.id, e.task_id, e.user_id, e.started_at, e.ended_at, e.duration_seconds, e.created_at,
			t.title, c.name
		FROM time_entries e
		JOIN tasks t ON t.id = e.task_id
		JOIN columns c ON c.id = t.column_id
		WHERE e.user_id = ?
		  AND e.ended_at IS NOT NULL
		  AND e.started_at < ?
		  AND e.ended_at > ?
		  AND c.board_id = ?
		ORDER BY e.started_at`
	rows, err := r.db.QueryContext(ctx, query,
		userID, end.Format(time.RFC3339), start.Format(time.RFC3339), boardID)
	if err != nil {
		return nil, fmt.Errorf("listing finished entries for board: %w", err)
	}
	defer rows.Close()

	var entries []ReportEntry
	for rows.Next() {
		var e domain.TimeEntry
		var startedAtStr, createdAtStr string
		var endedAt sql.NullString
		var item ReportEntry
		err := rows.Scan(&e.ID, &e.TaskID, &e.UserID, &startedAtStr, &endedAt,
			&e.DurationSeconds, &createdAtStr, &item.TaskTitle, &item.ColumnName)
		if err != nil {
			return nil, fmt.Errorf("scanning report entry: %w", err)
		}
		entry, parseErr := r.populateEntry(&e, startedAtStr, endedAt, createdAtStr)
		if parseErr != nil {
			return nil, parseErr
		}
		item.Entry = *entry
		entries = append(entries, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report entries: %w", err)
	}
	return entries, nil
}

func (r *SQLiteTimeEntryRepo) scanEntry(row *sql.Row) (*domain.TimeEntry, error) {
	var e domain.TimeEntry
	var startedAtStr, createdAtStr string
	var endedAt sql.NullString

	err := row.Scan(&e.ID, &e.TaskID, &e.UserID, &startedAtStr, &endedAt,
		&e.DurationSeconds, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("time entry: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning time entry: %w", err)
	}
	return r.populateEntry(&e, startedAtStr, endedAt, createdAtStr)
}

func (r *SQLiteTimeEntryRepo) scanEntries(rows *sql.Rows) ([]*domain.TimeEntry, error) {
	var entries []*domain.TimeEntry
	for rows.Next() {
		var e domain.TimeEntry
		var startedAtStr, createdAtStr string
		var endedAt sql.NullString

		err := rows.Scan(&e.ID, &e.TaskID, &e.UserID, &startedAtStr, &endedAt,
			&e.DurationSeconds, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("scanning time entry row: %w", err)
		}
		entry, parseErr := r.populateEntry(&e, startedAtStr, endedAt, createdAtStr)
		if parseErr != nil {
			return nil, parseErr
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time entries: %w", err)
	}
	return entries, nil
}

func (r *SQLiteTimeEntryRepo) populateEntry(e *domain.TimeEntry, startedAtStr string, endedAt sql.NullString, createdAtStr string) (*domain.TimeEntry, error) {
	var parseErr error
	e.StartedAt, parseErr = time.Parse(time.RFC3339, startedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing started_at: %w", parseErr)
	}
	e.EndedAt = parseNullableTime(endedAt, time.RFC3339)
	e.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	return e, nil
}
