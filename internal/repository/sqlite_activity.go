package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
)

// SQLiteActivityRepo implements ActivityRepo using a SQLite database.
// Activity rows are append-only; there is no update or delete path.
type SQLiteActivityRepo struct {
	db db.DBTX
}

// NewSQLiteActivityRepo creates a new SQLiteActivityRepo.
func NewSQLiteActivityRepo(conn db.DBTX) *SQLiteActivityRepo {
	return &SQLiteActivityRepo{db: conn}
}

func (r *SQLiteActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	meta := a.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding activity meta: %w", err)
	}
	query := `INSERT INTO task_activities (id, task_id, user_id, type, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.TaskID, nullableStrToValue(a.UserID), string(a.Type),
		string(metaJSON), a.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) ListByTask(ctx context.Context, taskID string) ([]*domain.Activity, error) {
	query := `SELECT id, task_id, user_id, type, meta, created_at FROM task_activities
		WHERE task_id = ? ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		var a domain.Activity
		var userID sql.NullString
		var typ, metaJSON, createdAtStr string
		if err := rows.Scan(&a.ID, &a.TaskID, &userID, &typ, &metaJSON, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		a.UserID = nullStrPtr(userID)
		a.Type = domain.ActivityType(typ)
		if err := json.Unmarshal([]byte(metaJSON), &a.Meta); err != nil {
			return nil, fmt.Errorf("decoding activity meta: %w", err)
		}
		a.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		activities = append(activities, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return activities, nil
}
