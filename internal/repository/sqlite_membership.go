package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
)

const membershipColumns = `id, workspace_id, user_id, role, weekly_capacity_minutes,
		is_active, joined_at, created_at, updated_at`

// SQLiteMembershipRepo implements MembershipRepo using a SQLite database.
type SQLiteMembershipRepo struct {
	db db.DBTX
}

// NewSQLiteMembershipRepo creates a new SQLiteMembershipRepo.
func NewSQLiteMembershipRepo(conn db.DBTX) *SQLiteMembershipRepo {
	return &SQLiteMembershipRepo{db: conn}
}

func (r *SQLiteMembershipRepo) Create(ctx context.Context, m *domain.Membership) error {
	query := `INSERT INTO workspace_memberships (` + membershipColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.WorkspaceID, m.UserID, string(m.Role),
		nullableIntToValue(m.WeeklyCapacityMinutes),
		boolToInt(m.IsActive),
		nullableTimeToString(m.JoinedAt, time.RFC3339),
		m.CreatedAt.Format(time.RFC3339),
		m.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting membership: %w", err)
	}
	return nil
}

func (r *SQLiteMembershipRepo) Get(ctx context.Context, workspaceID, userID string) (*domain.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM workspace_memberships
		WHERE workspace_id = ? AND user_id = ?`
	row := r.db.QueryRowContext(ctx, query, workspaceID, userID)

	var m domain.Membership
	var role string
	var capacity sql.NullInt64
	var isActive int
	var joinedAt sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &role, &capacity,
		&isActive, &joinedAt, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("membership: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning membership: %w", err)
	}

	m.Role = domain.Role(role)
	m.WeeklyCapacityMinutes = nullIntPtr(capacity)
	m.IsActive = intToBool(isActive)
	m.JoinedAt = parseNullableTime(joinedAt, time.RFC3339)
	var parseErr error
	m.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	m.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &m, nil
}

func (r *SQLiteMembershipRepo) Update(ctx context.Context, m *domain.Membership) error {
	query := `UPDATE workspace_memberships
		SET role = ?, weekly_capacity_minutes = ?, is_active = ?, updated_at = ?
		WHERE workspace_id = ? AND user_id = ?`
	_, err := r.db.ExecContext(ctx, query,
		string(m.Role),
		nullableIntToValue(m.WeeklyCapacityMinutes),
		boolToInt(m.IsActive),
		m.UpdatedAt.Format(time.RFC3339),
		m.WorkspaceID, m.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating membership: %w", err)
	}
	return nil
}

func (r *SQLiteMembershipRepo) Delete(ctx context.Context, workspaceID, userID string) error {
	query := `DELETE FROM workspace_memberships WHERE workspace_id = ? AND user_id = ?`
	if _, err := r.db.ExecContext(ctx, query, workspaceID, userID); err != nil {
		return fmt.Errorf("deleting membership: %w", err)
	}
	return nil
}

func (r *SQLiteMembershipRepo) ListMembers(ctx context.Context, workspaceID string) ([]domain.Member, error) {
	query := `SELECT u.id, u.name, u.email, m.role, m.weekly_capacity_minutes, m.is_active
		FROM workspace_memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = ?
		ORDER BY u.name`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var member domain.Member
		var role string
		var capacity sql.NullInt64
		var isActive int
		if err := rows.Scan(&member.UserID, &member.Name, &member.Email, &role, &capacity, &isActive); err != nil {
			return nil, fmt.Errorf("scanning member row: %w", err)
		}
		member.Role = domain.Role(role)
		member.WeeklyCapacityMinutes = nullIntPtr(capacity)
		member.IsActive = intToBool(isActive)
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating members: %w", err)
	}
	return members, nil
}

func (r *SQLiteMembershipRepo) CountByWorkspace(ctx context.Context, workspaceID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM workspace_memberships WHERE workspace_id = ?`
	if err := r.db.QueryRowContext(ctx, query, workspaceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting memberships: %w", err)
	}
	return count, nil
}
