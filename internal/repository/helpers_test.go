package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/testutil"
)

// seedColumn creates a user, workspace, board and one column, the minimal
// tree a task row needs.
func seedColumn(t *testing.T, database *sql.DB) (*domain.User, *domain.Workspace, *domain.Board, *domain.Column) {
	t.Helper()
	ctx := context.Background()

	user := testutil.NewTestUser("Seed")
	require.NoError(t, NewSQLiteUserRepo(database).Create(ctx, user))

	ws := testutil.NewTestWorkspace(user.ID, "Seed WS")
	require.NoError(t, NewSQLiteWorkspaceRepo(database).Create(ctx, ws))
	require.NoError(t, NewSQLiteMembershipRepo(database).Create(ctx,
		testutil.NewTestMembership(ws.ID, user.ID, testutil.WithRole(domain.RoleOwner))))

	board := testutil.NewTestBoard(ws.ID, user.ID, "Seed Board")
	require.NoError(t, NewSQLiteBoardRepo(database).Create(ctx, board))

	column := testutil.NewTestColumn(board.ID, user.ID, "Backlog")
	require.NoError(t, NewSQLiteColumnRepo(database).Create(ctx, column))

	return user, ws, board, column
}
