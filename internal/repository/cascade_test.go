package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classferreiracode/track-my-task/internal/testutil"
)

// TestCascadeDelete_BoardToTasks verifies boards -> columns -> tasks cascade.
func TestCascadeDelete_BoardToTasks(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	user, _, board, column := seedColumn(t, database)
	boards := NewSQLiteBoardRepo(database)
	tasks := NewSQLiteTaskRepo(database)

	task := testutil.NewTestTask(column.ID, user.ID, "Doomed")
	require.NoError(t, tasks.Create(ctx, task))

	require.NoError(t, boards.Delete(ctx, board.ID))

	_, err := tasks.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestCascadeDelete_TaskToEntries verifies tasks -> time_entries and
// tasks -> comments cascade.
func TestCascadeDelete_TaskToEntries(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	user, _, _, column := seedColumn(t, database)
	tasks := NewSQLiteTaskRepo(database)
	entries := NewSQLiteTimeEntryRepo(database)
	comments := NewSQLiteCommentRepo(database)

	task := testutil.NewTestTask(column.ID, user.ID, "Doomed")
	require.NoError(t, tasks.Create(ctx, task))

	entry := testutil.NewTestEntry(task.ID, user.ID)
	require.NoError(t, entries.Create(ctx, entry))
	require.NoError(t, comments.Create(ctx, testutil.NewTestComment(task.ID, user.ID, "gone soon")))

	require.NoError(t, tasks.Delete(ctx, task.ID))

	_, err := entries.GetByID(ctx, entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	remaining, err := comments.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

// TestCascadeDelete_WorkspaceToMemberships verifies workspaces -> memberships.
func TestCascadeDelete_WorkspaceToMemberships(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	user, ws, _, _ := seedColumn(t, database)
	workspaces := NewSQLiteWorkspaceRepo(database)
	memberships := NewSQLiteMembershipRepo(database)

	require.NoError(t, workspaces.Delete(ctx, ws.ID))

	_, err := memberships.Get(ctx, ws.ID, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
