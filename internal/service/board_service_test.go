package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classferreiracode/track-my-task/internal/domain"
)

func TestCreateBoard(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	board, err := e.boardSvc.CreateBoard(ctx, fx.Owner.ID, fx.WS.ID, "Sprint 12")
	require.NoError(t, err)
	assert.Equal(t, "sprint-12", board.Slug)
	assert.Equal(t, 2, board.SortOrder, "new boards append after the fixture board")
}

func TestCreateBoard_DuplicateSlug(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	_, err := e.boardSvc.CreateBoard(ctx, fx.Owner.ID, fx.WS.ID, "Sprint 12")
	require.NoError(t, err)

	// Same slug even with different casing.
	_, err = e.boardSvc.CreateBoard(ctx, fx.Owner.ID, fx.WS.ID, "SPRINT 12")
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestCreateBoard_ViewerRejected(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	viewer := e.addMember(t, fx.WS, "Viewer", domain.RoleViewer)

	_, err := e.boardSvc.CreateBoard(context.Background(), viewer.ID, fx.WS.ID, "Nope")
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestDeleteBoard_CreatorOrManager(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	editor := e.addMember(t, fx.WS, "Editor", domain.RoleEditor)
	other := e.addMember(t, fx.WS, "Other", domain.RoleEditor)
	ctx := context.Background()

	board, err := e.boardSvc.CreateBoard(ctx, editor.ID, fx.WS.ID, "Mine")
	require.NoError(t, err)

	// An editor who did not create the board cannot delete it.
	err = e.boardSvc.DeleteBoard(ctx, other.ID, board.ID)
	assert.ErrorIs(t, err, ErrNotPermitted)

	// The creator can.
	require.NoError(t, e.boardSvc.DeleteBoard(ctx, editor.ID, board.ID))

	// Admins can delete boards they did not create.
	board, err = e.boardSvc.CreateBoard(ctx, editor.ID, fx.WS.ID, "Theirs")
	require.NoError(t, err)
	require.NoError(t, e.boardSvc.DeleteBoard(ctx, fx.Owner.ID, board.ID))
}

func TestCreateColumn(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	col, err := e.boardSvc.CreateColumn(ctx, fx.Owner.ID, fx.Board.ID, "Revisão")
	require.NoError(t, err)
	assert.Equal(t, "revisao", col.Slug)
	assert.Equal(t, 4, col.SortOrder)
	assert.False(t, col.IsTerminal())

	_, err = e.boardSvc.CreateColumn(ctx, fx.Owner.ID, fx.Board.ID, "Revisao")
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestListColumns_AnyMember(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	viewer := e.addMember(t, fx.WS, "Viewer", domain.RoleViewer)
	ctx := context.Background()

	cols, err := e.boardSvc.ListColumns(ctx, viewer.ID, fx.Board.ID)
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, []string{"Backlog", "Em progresso", "Done"},
		[]string{cols[0].Name, cols[1].Name, cols[2].Name})
}
