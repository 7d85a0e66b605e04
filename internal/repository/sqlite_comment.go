package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
)

// SQLiteCommentRepo implements CommentRepo using a SQLite database.
type SQLiteCommentRepo struct {
	db db.DBTX
}

// NewSQLiteCommentRepo creates a new SQLiteCommentRepo.
func NewSQLiteCommentRepo(conn db.DBTX) *SQLiteCommentRepo {
	return &SQLiteCommentRepo{db: conn}
}

func (r *SQLiteCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	query := `INSERT INTO task_comments (id, task_id, user_id, body, created_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.TaskID, c.UserID, c.Body, c.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

func (r *SQLiteCommentRepo) ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error) {
	query := `SELECT id, task_id, user_id, body, created_at FROM task_comments
		WHERE task_id = ? ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		var createdAtStr string
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Body, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning comment row: %w", err)
		}
		c.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}
	return comments, nil
}

func (r *SQLiteCommentRepo) ReplaceMentions(ctx context.Context, commentID string, userIDs []string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM comment_mentions WHERE comment_id = ?`, commentID); err != nil {
		return fmt.Errorf("clearing mentions: %w", err)
	}
	for _, userID := range userIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO comment_mentions (comment_id, user_id) VALUES (?, ?)`,
			commentID, userID)
		if err != nil {
			return fmt.Errorf("inserting mention: %w", err)
		}
	}
	return nil
}

func (r *SQLiteCommentRepo) ListMentions(ctx context.Context, commentID string) ([]domain.Member, error) {
	query := `SELECT u.id, u.name, u.email FROM comment_mentions m
		JOIN users u ON u.id = m.user_id
		WHERE m.comment_id = ?
		ORDER BY u.name`
	rows, err := r.db.QueryContext(ctx, query, commentID)
	if err != nil {
		return nil, fmt.Errorf("listing mentions: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("scanning mention row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mentions: %w", err)
	}
	return members, nil
}
