package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/testutil"
)

func TestRoleOf(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	viewer := e.addMember(t, fx.WS, "Viewer", domain.RoleViewer)
	ctx := context.Background()

	role, err := e.access.RoleOf(ctx, fx.Owner.ID, fx.WS.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, role)

	role, err = e.access.RoleOf(ctx, viewer.ID, fx.WS.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleViewer, role)

	outsider := testutil.NewTestUser("Outsider")
	require.NoError(t, e.users.Create(ctx, outsider))
	_, err = e.access.RoleOf(ctx, outsider.ID, fx.WS.ID)
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestRequireRole(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	editor := e.addMember(t, fx.WS, "Editor", domain.RoleEditor)
	ctx := context.Background()

	assert.NoError(t, e.access.RequireRole(ctx, editor.ID, fx.WS.ID,
		domain.RoleOwner, domain.RoleAdmin, domain.RoleEditor))
	assert.ErrorIs(t, e.access.RequireRole(ctx, editor.ID, fx.WS.ID,
		domain.RoleOwner, domain.RoleAdmin), ErrNotPermitted)
}

func TestCanJoinChannel(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	task, err := e.taskSvc.Create(ctx, fx.Owner.ID, TaskCreate{ColumnID: fx.Backlog.ID, Title: "Realtime"})
	require.NoError(t, err)

	ok, err := e.access.CanJoinChannel(ctx, fx.Owner.ID, "tasks."+task.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.access.CanJoinChannel(ctx, fx.Owner.ID, "boards."+fx.Board.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	outsider := testutil.NewTestUser("Outsider")
	require.NoError(t, e.users.Create(ctx, outsider))
	ok, err = e.access.CanJoinChannel(ctx, outsider.ID, "boards."+fx.Board.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.access.CanJoinChannel(ctx, fx.Owner.ID, "presence.lobby")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.access.CanJoinChannel(ctx, fx.Owner.ID, "tasks.missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
