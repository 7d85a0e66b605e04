package testutil

import (
	"database/sql"
	"testing"

	"github.com/classferreiracode/track-my-task/internal/db"
)

// NewTestDB opens a fresh in-memory database with the full schema and
// registers its cleanup on t. Every test gets its own isolated store.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW wraps the test database in a real UnitOfWork.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
