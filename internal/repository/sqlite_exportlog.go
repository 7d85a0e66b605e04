package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
)

// SQLiteExportLogRepo implements ExportLogRepo using a SQLite database.
// Export logs exist only as a usage counter for the monthly export quota.
type SQLiteExportLogRepo struct {
	db db.DBTX
}

// NewSQLiteExportLogRepo creates a new SQLiteExportLogRepo.
func NewSQLiteExportLogRepo(conn db.DBTX) *SQLiteExportLogRepo {
	return &SQLiteExportLogRepo{db: conn}
}

func (r *SQLiteExportLogRepo) Create(ctx context.Context, l *domain.ExportLog) error {
	query := `INSERT INTO export_logs (id, workspace_id, user_id, board_id, exported_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.WorkspaceID, l.UserID, l.BoardID, l.ExportedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting export log: %w", err)
	}
	return nil
}

func (r *SQLiteExportLogRepo) CountForWorkspaceBetween(ctx context.Context, workspaceID string, start, end time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM export_logs
		WHERE workspace_id = ? AND exported_at >= ? AND exported_at <= ?`
	var count int
	err := r.db.QueryRowContext(ctx, query, workspaceID,
		start.Format(time.RFC3339), end.Format(time.RFC3339)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting export logs: %w", err)
	}
	return count, nil
}
