package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
)

const invitationColumns = `id, workspace_id, invited_by_user_id, email, role, token,
		accepted_at, expires_at, created_at`

// SQLiteInvitationRepo implements InvitationRepo using a SQLite database.
type SQLiteInvitationRepo struct {
	db db.DBTX
}

// NewSQLiteInvitationRepo creates a new SQLiteInvitationRepo.
func NewSQLiteInvitationRepo(conn db.DBTX) *SQLiteInvitationRepo {
	return &SQLiteInvitationRepo{db: conn}
}

func (r *SQLiteInvitationRepo) Create(ctx context.Context, i *domain.Invitation) error {
	query := `INSERT INTO workspace_invitations (` + invitationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		i.ID, i.WorkspaceID, i.InvitedByUserID, i.Email, string(i.Role), i.Token,
		nullableTimeToString(i.AcceptedAt, time.RFC3339),
		nullableTimeToString(i.ExpiresAt, time.RFC3339),
		i.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting invitation: %w", err)
	}
	return nil
}

func (r *SQLiteInvitationRepo) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM workspace_invitations WHERE token = ?`
	row := r.db.QueryRowContext(ctx, query, token)

	var i domain.Invitation
	var role string
	var acceptedAt, expiresAt sql.NullString
	var createdAtStr string

	err := row.Scan(&i.ID, &i.WorkspaceID, &i.InvitedByUserID, &i.Email, &role, &i.Token,
		&acceptedAt, &expiresAt, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("invitation: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning invitation: %w", err)
	}

	i.Role = domain.Role(role)
	i.AcceptedAt = parseNullableTime(acceptedAt, time.RFC3339)
	i.ExpiresAt = parseNullableTime(expiresAt, time.RFC3339)
	var parseErr error
	i.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	return &i, nil
}

func (r *SQLiteInvitationRepo) Update(ctx context.Context, i *domain.Invitation) error {
	query := `UPDATE workspace_invitations SET accepted_at = ?, expires_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		nullableTimeToString(i.AcceptedAt, time.RFC3339),
		nullableTimeToString(i.ExpiresAt, time.RFC3339),
		i.ID,
	)
	if err != nil {
		return fmt.Errorf("updating invitation: %w", err)
	}
	return nil
}

func (r *SQLiteInvitationRepo) HasPending(ctx context.Context, workspaceID, email string, now time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM workspace_invitations
		WHERE workspace_id = ? AND email = ? COLLATE NOCASE
		  AND accepted_at IS NULL
		  AND (expires_at IS NULL OR expires_at > ?)`
	var count int
	err := r.db.QueryRowContext(ctx, query, workspaceID, email, now.Format(time.RFC3339)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting pending invitations: %w", err)
	}
	return count > 0, nil
}
