package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
)

const boardColumns = `id, workspace_id, user_id, name, slug, sort_order, created_at, updated_at`

// SQLiteBoardRepo implements BoardRepo using a SQLite database.
type SQLiteBoardRepo struct {
	db db.DBTX
}

// NewSQLiteBoardRepo creates a new SQLiteBoardRepo.
func NewSQLiteBoardRepo(conn db.DBTX) *SQLiteBoardRepo {
	return &SQLiteBoardRepo{db: conn}
}

func (r *SQLiteBoardRepo) Create(ctx context.Context, b *domain.Board) error {
	query := `INSERT INTO boards (` + boardColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.WorkspaceID, b.UserID, b.Name, b.Slug, b.SortOrder,
		b.CreatedAt.Format(time.RFC3339), b.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting board: %w", err)
	}
	return nil
}

func (r *SQLiteBoardRepo) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+boardColumns+` FROM boards WHERE id = ?`, id)
	return scanBoard(row)
}

func (r *SQLiteBoardRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards
		WHERE workspace_id = ?
		ORDER BY sort_order, created_at`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		b, err := scanBoardRow(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating boards: %w", err)
	}
	return boards, nil
}

func (r *SQLiteBoardRepo) SlugExists(ctx context.Context, workspaceID, slug string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM boards WHERE workspace_id = ? AND slug = ?`
	if err := r.db.QueryRowContext(ctx, query, workspaceID, slug).Scan(&count); err != nil {
		return false, fmt.Errorf("checking board slug: %w", err)
	}
	return count > 0, nil
}

func (r *SQLiteBoardRepo) MaxSortOrder(ctx context.Context, workspaceID string) (int, error) {
	var max sql.NullInt64
	query := `SELECT MAX(sort_order) FROM boards WHERE workspace_id = ?`
	if err := r.db.QueryRowContext(ctx, query, workspaceID).Scan(&max); err != nil {
		return 0, fmt.Errorf("reading max board sort order: %w", err)
	}
	return int(max.Int64), nil
}

func (r *SQLiteBoardRepo) CountByWorkspace(ctx context.Context, workspaceID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM boards WHERE workspace_id = ?`
	if err := r.db.QueryRowContext(ctx, query, workspaceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting boards: %w", err)
	}
	return count, nil
}

func (r *SQLiteBoardRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting board: %w", err)
	}
	return nil
}

func scanBoard(row *sql.Row) (*domain.Board, error) {
	var b domain.Board
	var createdAtStr, updatedAtStr string
	err := row.Scan(&b.ID, &b.WorkspaceID, &b.UserID, &b.Name, &b.Slug, &b.SortOrder,
		&createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("board: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning board: %w", err)
	}
	return populateBoard(&b, createdAtStr, updatedAtStr)
}

func scanBoardRow(rows *sql.Rows) (*domain.Board, error) {
	var b domain.Board
	var createdAtStr, updatedAtStr string
	err := rows.Scan(&b.ID, &b.WorkspaceID, &b.UserID, &b.Name, &b.Slug, &b.SortOrder,
		&createdAtStr, &updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("scanning board row: %w", err)
	}
	return populateBoard(&b, createdAtStr, updatedAtStr)
}

func populateBoard(b *domain.Board, createdAtStr, updatedAtStr string) (*domain.Board, error) {
	var parseErr error
	b.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	b.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return b, nil
}
