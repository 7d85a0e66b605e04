package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
)

const columnColumns = `id, board_id, user_id, name, slug, sort_order, created_at, updated_at`

// SQLiteColumnRepo implements ColumnRepo using a SQLite database.
type SQLiteColumnRepo struct {
	db db.DBTX
}

// NewSQLiteColumnRepo creates a new SQLiteColumnRepo.
func NewSQLiteColumnRepo(conn db.DBTX) *SQLiteColumnRepo {
	return &SQLiteColumnRepo{db: conn}
}

func (r *SQLiteColumnRepo) Create(ctx context.Context, c *domain.Column) error {
	query := `INSERT INTO columns (` + columnColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.BoardID, c.UserID, c.Name, c.Slug, c.SortOrder,
		c.CreatedAt.Format(time.RFC3339), c.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting column: %w", err)
	}
	return nil
}

func (r *SQLiteColumnRepo) GetByID(ctx context.Context, id string) (*domain.Column, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+columnColumns+` FROM columns WHERE id = ?`, id)
	return r.scanColumn(row)
}

func (r *SQLiteColumnRepo) ListByBoard(ctx context.Context, boardID string) ([]*domain.Column, error) {
	query := `SELECT ` + columnColumns + ` FROM columns
		WHERE board_id = ?
		ORDER BY sort_order, created_at`
	rows, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("listing columns: %w", err)
	}
	defer rows.Close()
	return r.scanColumns(rows)
}

func (r *SQLiteColumnRepo) ListByIDs(ctx context.Context, boardID string, ids []string) ([]*domain.Column, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + columnColumns + ` FROM columns
		WHERE board_id = ? AND id IN (` + sqlPlaceholders(len(ids)) + `)`
	args := make([]any, 0, len(ids)+1)
	args = append(args, boardID)
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing columns by ids: %w", err)
	}
	defer rows.Close()
	return r.scanColumns(rows)
}

func (r *SQLiteColumnRepo) FirstByBoard(ctx context.Context, boardID string) (*domain.Column, error) {
	query := `SELECT ` + columnColumns + ` FROM columns
		WHERE board_id = ?
		ORDER BY sort_order, created_at
		LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, boardID)
	return r.scanColumn(row)
}

func (r *SQLiteColumnRepo) SlugExists(ctx context.Context, boardID, slug string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM columns WHERE board_id = ? AND slug = ?`
	if err := r.db.QueryRowContext(ctx, query, boardID, slug).Scan(&count); err != nil {
		return false, fmt.Errorf("checking column slug: %w", err)
	}
	return count > 0, nil
}

func (r *SQLiteColumnRepo) MaxSortOrder(ctx context.Context, boardID string) (int, error) {
	var max sql.NullInt64
	query := `SELECT MAX(sort_order) FROM columns WHERE board_id = ?`
	if err := r.db.QueryRowContext(ctx, query, boardID).Scan(&max); err != nil {
		return 0, fmt.Errorf("reading max column sort order: %w", err)
	}
	return int(max.Int64), nil
}

func (r *SQLiteColumnRepo) UpdateSortOrder(ctx context.Context, id string, sortOrder int) error {
	query := `UPDATE columns SET sort_order = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, sortOrder, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating column sort order: %w", err)
	}
	return nil
}

func (r *SQLiteColumnRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM columns WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting column: %w", err)
	}
	return nil
}

func (r *SQLiteColumnRepo) WorkspaceID(ctx context.Context, columnID string) (string, error) {
	query := `SELECT b.workspace_id FROM columns c
		JOIN boards b ON b.id = c.board_id
		WHERE c.id = ?`
	var workspaceID string
	if err := r.db.QueryRowContext(ctx, query, columnID).Scan(&workspaceID); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("column: %w", ErrNotFound)
		}
		return "", fmt.Errorf("resolving column workspace: %w", err)
	}
	return workspaceID, nil
}

func (r *SQLiteColumnRepo) scanColumn(row *sql.Row) (*domain.Column, error) {
	var c domain.Column
	var createdAtStr, updatedAtStr string
	err := row.Scan(&c.ID, &c.BoardID, &c.UserID, &c.Name, &c.Slug, &c.SortOrder,
		&createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("column: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning column: %w", err)
	}
	return r.populateColumn(&c, createdAtStr, updatedAtStr)
}

func (r *SQLiteColumnRepo) scanColumns(rows *sql.Rows) ([]*domain.Column, error) {
	var columns []*domain.Column
	for rows.Next() {
		var c domain.Column
		var createdAtStr, updatedAtStr string
		err := rows.Scan(&c.ID, &c.BoardID, &c.UserID, &c.Name, &c.Slug, &c.SortOrder,
			&createdAtStr, &updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("scanning column row: %w", err)
		}
		column, parseErr := r.populateColumn(&c, createdAtStr, updatedAtStr)
		if parseErr != nil {
			return nil, parseErr
		}
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating columns: %w", err)
	}
	return columns, nil
}

func (r *SQLiteColumnRepo) populateColumn(c *domain.Column, createdAtStr, updatedAtStr string) (*domain.Column, error) {
	var parseErr error
	c.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	c.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return c, nil
}

// sqlPlaceholders returns a comma-separated list of n "?" placeholders.
func sqlPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
