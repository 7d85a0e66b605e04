package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
)

// SQLitePlanRepo implements PlanRepo using a SQLite database.
type SQLitePlanRepo struct {
	db db.DBTX
}

// NewSQLitePlanRepo creates a new SQLitePlanRepo.
func NewSQLitePlanRepo(conn db.DBTX) *SQLitePlanRepo {
	return &SQLitePlanRepo{db: conn}
}

func (r *SQLitePlanRepo) GetByKey(ctx context.Context, key string) (*domain.Plan, error) {
	query := `SELECT id, key, name, description, created_at FROM plans WHERE key = ?`
	row := r.db.QueryRowContext(ctx, query, key)

	var p domain.Plan
	var createdAtStr string
	err := row.Scan(&p.ID, &p.Key, &p.Name, &p.Description, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("plan: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning plan: %w", err)
	}
	p.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &p, nil
}

// EnsurePlan returns the plan for key, creating it if absent.
func (r *SQLitePlanRepo) EnsurePlan(ctx context.Context, key, name, description string) (*domain.Plan, error) {
	query := `INSERT OR IGNORE INTO plans (id, key, name, description, created_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		uuid.New().String(), key, name, description,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("ensuring plan: %w", err)
	}
	return r.GetByKey(ctx, key)
}

func (r *SQLitePlanRepo) UpsertLimit(ctx context.Context, planID, limitKey string, limitValue *int) error {
	query := `INSERT INTO plan_limits (id, plan_id, limit_key, limit_value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(plan_id, limit_key) DO UPDATE SET limit_value = excluded.limit_value`
	_, err := r.db.ExecContext(ctx, query,
		uuid.New().String(), planID, limitKey, nullableIntToValue(limitValue))
	if err != nil {
		return fmt.Errorf("upserting plan limit: %w", err)
	}
	return nil
}

func (r *SQLitePlanRepo) LimitsForPlan(ctx context.Context, planID string) (domain.LimitSet, error) {
	query := `SELECT limit_key, limit_value FROM plan_limits WHERE plan_id = ?`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("listing plan limits: %w", err)
	}
	defer rows.Close()

	limits := domain.LimitSet{}
	for rows.Next() {
		var key string
		var value sql.NullInt64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning plan limit row: %w", err)
		}
		limits[key] = nullIntPtr(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan limits: %w", err)
	}
	return limits, nil
}

func (r *SQLitePlanRepo) GetSubscription(ctx context.Context, workspaceID string) (*domain.WorkspaceSubscription, error) {
	query := `SELECT id, workspace_id, plan_key, created_at FROM workspace_subscriptions
		WHERE workspace_id = ?`
	row := r.db.QueryRowContext(ctx, query, workspaceID)

	var s domain.WorkspaceSubscription
	var createdAtStr string
	err := row.Scan(&s.ID, &s.WorkspaceID, &s.PlanKey, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("workspace subscription: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning subscription: %w", err)
	}
	s.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &s, nil
}

func (r *SQLitePlanRepo) SetSubscription(ctx context.Context, s *domain.WorkspaceSubscription) error {
	query := `INSERT INTO workspace_subscriptions (id, workspace_id, plan_key, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(workspace_id) DO UPDATE SET plan_key = excluded.plan_key`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.WorkspaceID, s.PlanKey, s.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("setting subscription: %w", err)
	}
	return nil
}
