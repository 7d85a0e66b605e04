package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
)

const dateLayout = "2006-01-02"

const taskColumns = `id, column_id, user_id, title, description, priority,
		starts_at, ends_at, sort_order, is_completed, completed_at,
		overdue_notified_at, created_at, updated_at`

// taskColumnsAliased is the same column list prefixed with "t." for join queries.
const taskColumnsAliased = `t.id, t.column_id, t.user_id, t.title, t.description, t.priority,
		t.starts_at, t.ends_at, t.sort_order, t.is_completed, t.completed_at,
		t.overdue_notified_at, t.created_at, t.updated_at`

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.ColumnID, t.UserID, t.Title, t.Description, t.Priority,
		nullableTimeToString(t.StartsAt, dateLayout),
		nullableTimeToString(t.EndsAt, dateLayout),
		t.SortOrder,
		boolToInt(t.IsCompleted),
		nullableTimeToString(t.CompletedAt, time.RFC3339),
		nullableTimeToString(t.OverdueNotifiedAt, time.RFC3339),
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return r.scanTask(row)
}

func (r *SQLiteTaskRepo) ListByColumn(ctx context.Context, columnID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE column_id = ?
		ORDER BY sort_order, created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, columnID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks by column: %w", err)
	}
	defer rows.Close()
	return r.scanTasks(rows)
}

func (r *SQLiteTaskRepo) ListByBoard(ctx context.Context, boardID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumnsAliased + ` FROM tasks t
		JOIN columns c ON c.id = t.column_id
		WHERE c.board_id = ?
		ORDER BY t.column_id, t.sort_order, t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks by board: %w", err)
	}
	defer rows.Close()
	return r.scanTasks(rows)
}

func (r *SQLiteTaskRepo) ListByIDsWithWorkspace(ctx context.Context, ids []string) ([]TaskWithWorkspace, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + taskColumnsAliased + `, c.board_id, b.workspace_id
		FROM tasks t
		JOIN columns c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		WHERE t.id IN (` + sqlPlaceholders(len(ids)) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks by ids: %w", err)
	}
	defer rows.Close()

	var result []TaskWithWorkspace
	for rows.Next() {
		var t domain.Task
		var startsAt, endsAt, completedAt, overdueAt sql.NullString
		var isCompleted int
		var createdAtStr, updatedAtStr string
		var item TaskWithWorkspace

		err := rows.Scan(&t.ID, &t.ColumnID, &t.UserID, &t.Title, &t.Description, &t.Priority,
			&startsAt, &endsAt, &t.SortOrder, &isCompleted, &completedAt,
			&overdueAt, &createdAtStr, &updatedAtStr,
			&item.BoardID, &item.WorkspaceID)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		task, parseErr := r.populateTask(&t, startsAt, endsAt, completedAt, overdueAt, isCompleted, createdAtStr, updatedAtStr)
		if parseErr != nil {
			return nil, parseErr
		}
		item.Task = *task
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return result, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET column_id = ?, title = ?, description = ?, priority = ?,
		starts_at = ?, ends_at = ?, sort_order = ?, is_completed = ?, completed_at = ?,
		overdue_notified_at = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		t.ColumnID, t.Title, t.Description, t.Priority,
		nullableTimeToString(t.StartsAt, dateLayout),
		nullableTimeToString(t.EndsAt, dateLayout),
		t.SortOrder,
		boolToInt(t.IsCompleted),
		nullableTimeToString(t.CompletedAt, time.RFC3339),
		nullableTimeToString(t.OverdueNotifiedAt, time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) MaxSortOrder(ctx context.Context, columnID string) (int, error) {
	var max sql.NullInt64
	query := `SELECT MAX(sort_order) FROM tasks WHERE column_id = ?`
	if err := r.db.QueryRowContext(ctx, query, columnID).Scan(&max); err != nil {
		return 0, fmt.Errorf("reading max task sort order: %w", err)
	}
	return int(max.Int64), nil
}

func (r *SQLiteTaskRepo) CountByBoard(ctx context.Context, boardID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM tasks t
		JOIN columns c ON c.id = t.column_id
		WHERE c.board_id = ?`
	if err := r.db.QueryRowContext(ctx, query, boardID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting tasks by board: %w", err)
	}
	return count, nil
}

func (r *SQLiteTaskRepo) WorkspaceID(ctx context.Context, taskID string) (string, error) {
	query := `SELECT b.workspace_id FROM tasks t
		JOIN columns c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		WHERE t.id = ?`
	var workspaceID string
	if err := r.db.QueryRowContext(ctx, query, taskID).Scan(&workspaceID); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("task: %w", ErrNotFound)
		}
		return "", fmt.Errorf("resolving task workspace: %w", err)
	}
	return workspaceID, nil
}

func (r *SQLiteTaskRepo) BoardID(ctx context.Context, taskID string) (string, error) {
	query := `SELECT c.board_id FROM tasks t
		JOIN columns c ON c.id = t.column_id
		WHERE t.id = ?`
	var boardID string
	if err := r.db.QueryRowContext(ctx, query, taskID).Scan(&boardID); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("task: %w", ErrNotFound)
		}
		return "", fmt.Errorf("resolving task board: %w", err)
	}
	return boardID, nil
}

func (r *SQLiteTaskRepo) ReplaceAssignees(ctx context.Context, taskID string, assignees []domain.Assignee) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_assignees WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("clearing assignees: %w", err)
	}
	for _, a := range assignees {
		query := `INSERT INTO task_assignees (task_id, user_id, assigned_by_user_id, assigned_at)
			VALUES (?, ?, ?, ?)`
		_, err := r.db.ExecContext(ctx, query,
			taskID, a.UserID, a.AssignedByUserID, a.AssignedAt.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("inserting assignee: %w", err)
		}
	}
	return nil
}

func (r *SQLiteTaskRepo) ListAssignees(ctx context.Context, taskID string) ([]domain.Member, error) {
	query := `SELECT u.id, u.name, u.email FROM task_assignees a
		JOIN users u ON u.id = a.user_id
		WHERE a.task_id = ?
		ORDER BY u.name`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing assignees: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("scanning assignee row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignees: %w", err)
	}
	return members, nil
}

func (r *SQLiteTaskRepo) ReplaceLabels(ctx context.Context, taskID string, labelIDs []string) error {
	return r.replaceJoinRows(ctx, "task_label_task", "label_id", taskID, labelIDs)
}

func (r *SQLiteTaskRepo) ListLabels(ctx context.Context, taskID string) ([]*domain.Label, error) {
	query := `SELECT l.id, l.user_id, l.name, l.color, l.created_at FROM task_label_task j
		JOIN task_labels l ON l.id = j.label_id
		WHERE j.task_id = ?
		ORDER BY l.name`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing task labels: %w", err)
	}
	defer rows.Close()

	var labels []*domain.Label
	for rows.Next() {
		var l domain.Label
		var createdAtStr string
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Color, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning label row: %w", err)
		}
		l.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		labels = append(labels, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating labels: %w", err)
	}
	return labels, nil
}

func (r *SQLiteTaskRepo) ReplaceTags(ctx context.Context, taskID string, tagIDs []string) error {
	return r.replaceJoinRows(ctx, "task_tag_task", "tag_id", taskID, tagIDs)
}

func (r *SQLiteTaskRepo) ListTags(ctx context.Context, taskID string) ([]*domain.Tag, error) {
	query := `SELECT g.id, g.user_id, g.name, g.color, g.created_at FROM task_tag_task j
		JOIN task_tags g ON g.id = j.tag_id
		WHERE j.task_id = ?
		ORDER BY g.name`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing task tags: %w", err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		var g domain.Tag
		var createdAtStr string
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Color, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		g.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		tags = append(tags, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

func (r *SQLiteTaskRepo) replaceJoinRows(ctx context.Context, table, column, taskID string, ids []string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("clearing %s: %w", table, err)
	}
	for _, id := range ids {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO `+table+` (task_id, `+column+`) VALUES (?, ?)`, taskID, id)
		if err != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
	}
	return nil
}

func (r *SQLiteTaskRepo) scanTask(row *sql.Row) (*domain.Task, error) {
	var t domain.Task
	var startsAt, endsAt, completedAt, overdueAt sql.NullString
	var isCompleted int
	var createdAtStr, updatedAtStr string

	err := row.Scan(&t.ID, &t.ColumnID, &t.UserID, &t.Title, &t.Description, &t.Priority,
		&startsAt, &endsAt, &t.SortOrder, &isCompleted, &completedAt,
		&overdueAt, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	return r.populateTask(&t, startsAt, endsAt, completedAt, overdueAt, isCompleted, createdAtStr, updatedAtStr)
}

func (r *SQLiteTaskRepo) scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		var t domain.Task
		var startsAt, endsAt, completedAt, overdueAt sql.NullString
		var isCompleted int
		var createdAtStr, updatedAtStr string

		err := rows.Scan(&t.ID, &t.ColumnID, &t.UserID, &t.Title, &t.Description, &t.Priority,
			&startsAt, &endsAt, &t.SortOrder, &isCompleted, &completedAt,
			&overdueAt, &createdAtStr, &updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		task, parseErr := r.populateTask(&t, startsAt, endsAt, completedAt, overdueAt, isCompleted, createdAtStr, updatedAtStr)
		if parseErr != nil {
			return nil, parseErr
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) populateTask(t *domain.Task, startsAt, endsAt, completedAt, overdueAt sql.NullString, isCompleted int, createdAtStr, updatedAtStr string) (*domain.Task, error) {
	t.StartsAt = parseNullableTime(startsAt, dateLayout)
	t.EndsAt = parseNullableTime(endsAt, dateLayout)
	t.IsCompleted = intToBool(isCompleted)
	t.CompletedAt = parseNullableTime(completedAt, time.RFC3339)
	t.OverdueNotifiedAt = parseNullableTime(overdueAt, time.RFC3339)

	var parseErr error
	t.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	t.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return t, nil
}
