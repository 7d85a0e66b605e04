package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS workspaces (
		id            TEXT PRIMARY KEY,
		owner_user_id TEXT NOT NULL REFERENCES users(id),
		name          TEXT NOT NULL,
		slug          TEXT NOT NULL,
		plan          TEXT NOT NULL DEFAULT 'free',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		UNIQUE(owner_user_id, slug)
	)`,

	`CREATE TABLE IF NOT EXISTS workspace_memberships (
		id                      TEXT PRIMARY KEY,
		workspace_id            TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		user_id                 TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role                    TEXT NOT NULL
		                        CHECK(role IN ('owner','admin','editor','member','viewer')),
		weekly_capacity_minutes INTEGER,
		is_active               INTEGER NOT NULL DEFAULT 1,
		joined_at               TEXT,
		created_at              TEXT NOT NULL,
		updated_at              TEXT NOT NULL,
		UNIQUE(workspace_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_memberships_user ON workspace_memberships(user_id)`,

	`CREATE TABLE IF NOT EXISTS workspace_invitations (
		id                 TEXT PRIMARY KEY,
		workspace_id       TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		invited_by_user_id TEXT NOT NULL REFERENCES users(id),
		email              TEXT NOT NULL,
		role               TEXT NOT NULL,
		token              TEXT NOT NULL UNIQUE,
		accepted_at        TEXT,
		expires_at         TEXT,
		created_at         TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS boards (
		id           TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		user_id      TEXT NOT NULL REFERENCES users(id),
		name         TEXT NOT NULL,
		slug         TEXT NOT NULL,
		sort_order   INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		UNIQUE(workspace_id, slug)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_boards_workspace ON boards(workspace_id)`,

	`CREATE TABLE IF NOT EXISTS columns (
		id         TEXT PRIMARY KEY,
		board_id   TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES users(id),
		name       TEXT NOT NULL,
		slug       TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(board_id, slug)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_columns_board ON columns(board_id)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id                  TEXT PRIMARY KEY,
		column_id           TEXT NOT NULL REFERENCES columns(id) ON DELETE CASCADE,
		user_id             TEXT NOT NULL REFERENCES users(id),
		title               TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		priority            TEXT NOT NULL DEFAULT '',
		starts_at           TEXT,
		ends_at             TEXT,
		sort_order          INTEGER NOT NULL DEFAULT 0,
		is_completed        INTEGER NOT NULL DEFAULT 0,
		completed_at        TEXT,
		overdue_notified_at TEXT,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_column ON tasks(column_id)`,

	`CREATE TABLE IF NOT EXISTS task_assignees (
		task_id             TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		user_id             TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		assigned_by_user_id TEXT NOT NULL,
		assigned_at         TEXT NOT NULL,
		PRIMARY KEY(task_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS task_labels (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		color      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		UNIQUE(user_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS task_tags (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		color      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		UNIQUE(user_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS task_label_task (
		task_id  TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		label_id TEXT NOT NULL REFERENCES task_labels(id) ON DELETE CASCADE,
		PRIMARY KEY(task_id, label_id)
	)`,

	`CREATE TABLE IF NOT EXISTS task_tag_task (
		task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		tag_id  TEXT NOT NULL REFERENCES task_tags(id) ON DELETE CASCADE,
		PRIMARY KEY(task_id, tag_id)
	)`,

	`CREATE TABLE IF NOT EXISTS time_entries (
		id               TEXT PRIMARY KEY,
		task_id          TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		user_id          TEXT NOT NULL REFERENCES users(id),
		started_at       TEXT NOT NULL,
		ended_at         TEXT,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_task ON time_entries(task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_user ON time_entries(user_id)`,

	`CREATE TABLE IF NOT EXISTS task_comments (
		id         TEXT PRIMARY KEY,
		task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES users(id),
		body       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS comment_mentions (
		comment_id TEXT NOT NULL REFERENCES task_comments(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY(comment_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS task_activities (
		id         TEXT PRIMARY KEY,
		task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		user_id    TEXT,
		type       TEXT NOT NULL,
		meta       TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_task ON task_activities(task_id)`,

	`CREATE TABLE IF NOT EXISTS plans (
		id          TEXT PRIMARY KEY,
		key         TEXT NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS plan_limits (
		id          TEXT PRIMARY KEY,
		plan_id     TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		limit_key   TEXT NOT NULL,
		limit_value INTEGER,
		UNIQUE(plan_id, limit_key)
	)`,

	`CREATE TABLE IF NOT EXISTS workspace_subscriptions (
		id           TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL UNIQUE REFERENCES workspaces(id) ON DELETE CASCADE,
		plan_key     TEXT NOT NULL,
		created_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS export_logs (
		id           TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		user_id      TEXT NOT NULL,
		board_id     TEXT,
		exported_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_export_logs_workspace ON export_logs(workspace_id, exported_at)`,
}
