package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
)

// SQLiteLabelRepo implements LabelRepo over the task_labels and task_tags
// tables. Labels and tags share a shape and differ only in table.
type SQLiteLabelRepo struct {
	db db.DBTX
}

// NewSQLiteLabelRepo creates a new SQLiteLabelRepo.
func NewSQLiteLabelRepo(conn db.DBTX) *SQLiteLabelRepo {
	return &SQLiteLabelRepo{db: conn}
}

func (r *SQLiteLabelRepo) CreateLabel(ctx context.Context, l *domain.Label) error {
	query := `INSERT INTO task_labels (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.UserID, l.Name, l.Color, l.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting label: %w", err)
	}
	return nil
}

func (r *SQLiteLabelRepo) ListLabelsByUser(ctx context.Context, userID string) ([]*domain.Label, error) {
	query := `SELECT id, user_id, name, color, created_at FROM task_labels
		WHERE user_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
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

func (r *SQLiteLabelRepo) CreateTag(ctx context.Context, t *domain.Tag) error {
	query := `INSERT INTO task_tags (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Name, t.Color, t.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting tag: %w", err)
	}
	return nil
}

func (r *SQLiteLabelRepo) ListTagsByUser(ctx context.Context, userID string) ([]*domain.Tag, error) {
	query := `SELECT id, user_id, name, color, created_at FROM task_tags
		WHERE user_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		var t domain.Tag
		var createdAtStr string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		t.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}
