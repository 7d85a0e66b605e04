package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
)

const workspaceColumns = `id, owner_user_id, name, slug, plan, created_at, updated_at`

// SQLiteWorkspaceRepo implements WorkspaceRepo using a SQLite database.
type SQLiteWorkspaceRepo struct {
	db db.DBTX
}

// NewSQLiteWorkspaceRepo creates a new SQLiteWorkspaceRepo.
func NewSQLiteWorkspaceRepo(conn db.DBTX) *SQLiteWorkspaceRepo {
	return &SQLiteWorkspaceRepo{db: conn}
}

func (r *SQLiteWorkspaceRepo) Create(ctx context.Context, w *domain.Workspace) error {
	query := `INSERT INTO workspaces (id, owner_user_id, name, slug, plan, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		w.ID, w.OwnerUserID, w.Name, w.Slug, w.Plan,
		w.CreatedAt.Format(time.RFC3339), w.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting workspace: %w", err)
	}
	return nil
}

func (r *SQLiteWorkspaceRepo) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE id = ?`, id)
	return r.scanWorkspace(row)
}

func (r *SQLiteWorkspaceRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Workspace, error) {
	query := `SELECT w.id, w.owner_user_id, w.name, w.slug, w.plan, w.created_at, w.updated_at
		FROM workspaces w
		JOIN workspace_memberships m ON m.workspace_id = w.id
		WHERE m.user_id = ?
		ORDER BY w.name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing workspaces by user: %w", err)
	}
	defer rows.Close()

	var workspaces []*domain.Workspace
	for rows.Next() {
		w, err := r.scanWorkspaceRow(rows)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workspaces: %w", err)
	}
	return workspaces, nil
}

func (r *SQLiteWorkspaceRepo) Update(ctx context.Context, w *domain.Workspace) error {
	query := `UPDATE workspaces SET name = ?, slug = ?, plan = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		w.Name, w.Slug, w.Plan, w.UpdatedAt.Format(time.RFC3339), w.ID,
	)
	if err != nil {
		return fmt.Errorf("updating workspace: %w", err)
	}
	return nil
}

func (r *SQLiteWorkspaceRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting workspace: %w", err)
	}
	return nil
}

func (r *SQLiteWorkspaceRepo) scanWorkspace(row *sql.Row) (*domain.Workspace, error) {
	var w domain.Workspace
	var createdAtStr, updatedAtStr string
	err := row.Scan(&w.ID, &w.OwnerUserID, &w.Name, &w.Slug, &w.Plan, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("workspace: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning workspace: %w", err)
	}
	return r.populateWorkspace(&w, createdAtStr, updatedAtStr)
}

func (r *SQLiteWorkspaceRepo) scanWorkspaceRow(rows *sql.Rows) (*domain.Workspace, error) {
	var w domain.Workspace
	var createdAtStr, updatedAtStr string
	err := rows.Scan(&w.ID, &w.OwnerUserID, &w.Name, &w.Slug, &w.Plan, &createdAtStr, &updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("scanning workspace row: %w", err)
	}
	return r.populateWorkspace(&w, createdAtStr, updatedAtStr)
}

func (r *SQLiteWorkspaceRepo) populateWorkspace(w *domain.Workspace, createdAtStr, updatedAtStr string) (*domain.Workspace, error) {
	var parseErr error
	w.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	w.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return w, nil
}
