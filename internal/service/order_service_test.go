package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/testutil"
)

func (e *env) seedTasks(t *testing.T, fx *fixture, titles ...string) []*domain.Task {
	t.Helper()
	ctx := context.Background()
	out := make([]*domain.Task, 0, len(titles))
	for i, title := range titles {
		task := testutil.NewTestTask(fx.Backlog.ID, fx.Owner.ID, title, testutil.WithSortOrder(i+1))
		require.NoError(t, e.tasks.Create(ctx, task))
		out = append(out, task)
	}
	return out
}

func TestReorderTasks_RenumbersContiguously(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	tasks := e.seedTasks(t, fx, "A", "B", "C")
	ids := []string{tasks[2].ID, tasks[0].ID, tasks[1].ID}

	require.NoError(t, e.orderSvc.ReorderTasks(ctx, fx.Owner.ID, fx.Backlog.ID, ids))

	for i, id := range ids {
		stored, err := e.tasks.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, i+1, stored.SortOrder)
		assert.Equal(t, fx.Backlog.ID, stored.ColumnID)
	}
}

func TestReorderTasks_RoundTripRestoresOrder(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	tasks := e.seedTasks(t, fx, "A", "B", "C")
	original := []string{tasks[0].ID, tasks[1].ID, tasks[2].ID}
	reversed := []string{tasks[2].ID, tasks[1].ID, tasks[0].ID}

	require.NoError(t, e.orderSvc.ReorderTasks(ctx, fx.Owner.ID, fx.Backlog.ID, reversed))
	require.NoError(t, e.orderSvc.ReorderTasks(ctx, fx.Owner.ID, fx.Backlog.ID, original))

	for i, id := range original {
		stored, err := e.tasks.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, i+1, stored.SortOrder)
	}
}

func TestReorderTasks_DuplicateIDsCollapse(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	tasks := e.seedTasks(t, fx, "A", "B")
	ids := []string{tasks[1].ID, tasks[1].ID, tasks[0].ID}

	require.NoError(t, e.orderSvc.ReorderTasks(ctx, fx.Owner.ID, fx.Backlog.ID, ids))

	first, err := e.tasks.GetByID(ctx, tasks[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.SortOrder)
	second, err := e.tasks.GetByID(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.SortOrder)
}

func TestReorderTasks_UnknownIDRejectsWholeBatch(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	tasks := e.seedTasks(t, fx, "A", "B")
	ids := []string{tasks[0].ID, "missing", tasks[1].ID}

	err := e.orderSvc.ReorderTasks(ctx, fx.Owner.ID, fx.Backlog.ID, ids)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	// Nothing moved.
	stored, err := e.tasks.GetByID(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.SortOrder)
}

func TestReorderTasks_CrossWorkspaceRejected(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	// A second workspace the actor also owns, with its own task.
	otherWS := testutil.NewTestWorkspace(fx.Owner.ID, "Other")
	require.NoError(t, e.workspaces.Create(ctx, otherWS))
	require.NoError(t, e.memberships.Create(ctx,
		testutil.NewTestMembership(otherWS.ID, fx.Owner.ID, testutil.WithRole(domain.RoleOwner))))
	otherBoard := testutil.NewTestBoard(otherWS.ID, fx.Owner.ID, "Estranho")
	require.NoError(t, e.boards.Create(ctx, otherBoard))
	otherCol := testutil.NewTestColumn(otherBoard.ID, fx.Owner.ID, "Backlog")
	require.NoError(t, e.columns.Create(ctx, otherCol))
	foreign := testutil.NewTestTask(otherCol.ID, fx.Owner.ID, "Foreign")
	require.NoError(t, e.tasks.Create(ctx, foreign))

	local := e.seedTasks(t, fx, "Local")

	err := e.orderSvc.ReorderTasks(ctx, fx.Owner.ID, fx.Backlog.ID, []string{local[0].ID, foreign.ID})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	stored, err := e.tasks.GetByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, otherCol.ID, stored.ColumnID, "foreign task must not move")
}

func TestReorderTasks_EmptyListRejected(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)

	err := e.orderSvc.ReorderTasks(context.Background(), fx.Owner.ID, fx.Backlog.ID, nil)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestReorderTasks_TerminalColumnSharedTimestamp(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	tasks := e.seedTasks(t, fx, "A", "B", "C")
	entry := testutil.NewTestEntry(tasks[0].ID, fx.Owner.ID,
		testutil.WithStartedAt(time.Now().UTC().Add(-10*time.Minute)))
	require.NoError(t, e.entries.Create(ctx, entry))

	ids := []string{tasks[0].ID, tasks[1].ID, tasks[2].ID}
	require.NoError(t, e.orderSvc.ReorderTasks(ctx, fx.Owner.ID, fx.Done.ID, ids))

	var completedAt time.Time
	for i, id := range ids {
		stored, err := e.tasks.GetByID(ctx, id)
		require.NoError(t, err)
		require.True(t, stored.IsCompleted)
		require.NotNil(t, stored.CompletedAt)
		if i == 0 {
			completedAt = *stored.CompletedAt
			continue
		}
		assert.Equal(t, completedAt, *stored.CompletedAt, "batch shares one completion instant")
	}

	stopped, err := e.entries.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, stopped.EndedAt, "running timers stop on the terminal move")
}

func TestReorderTasks_TerminalMoveRecordsLifecycle(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	tasks := e.seedTasks(t, fx, "A", "B")
	ids := []string{tasks[0].ID, tasks[1].ID}
	require.NoError(t, e.orderSvc.ReorderTasks(ctx, fx.Owner.ID, fx.Done.ID, ids))

	// Dragging into a terminal column leaves the same trail as a single
	// task update: a status change plus a completion per moved task.
	for _, task := range tasks {
		activities, err := e.activities.ListByTask(ctx, task.ID)
		require.NoError(t, err)
		types := make([]domain.ActivityType, 0, len(activities))
		for _, a := range activities {
			types = append(types, a.Type)
		}
		assert.Contains(t, types, domain.ActivityStatusChanged)
		assert.Contains(t, types, domain.ActivityCompleted)
	}

	completions := e.notifier.callsOfKind(string(domain.ActivityCompleted))
	require.Len(t, completions, 2)
	assert.Contains(t, e.broadcaster.channels, "boards."+fx.Board.ID)
}

func TestReorderTasks_SameColumnLeavesNoTrail(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	tasks := e.seedTasks(t, fx, "A", "B")
	require.NoError(t, e.orderSvc.ReorderTasks(ctx, fx.Owner.ID, fx.Backlog.ID,
		[]string{tasks[1].ID, tasks[0].ID}))

	for _, task := range tasks {
		activities, err := e.activities.ListByTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Empty(t, activities, "pure renumbering is not an activity")
	}
	assert.Empty(t, e.notifier.callsOfKind(string(domain.ActivityStatusChanged)))
}

func TestReorderTasks_OutOfTerminalClearsCompletion(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	done := testutil.NewTestTask(fx.Done.ID, fx.Owner.ID, "Finished",
		testutil.WithCompleted(time.Now().UTC()))
	require.NoError(t, e.tasks.Create(ctx, done))

	require.NoError(t, e.orderSvc.ReorderTasks(ctx, fx.Owner.ID, fx.Doing.ID, []string{done.ID}))

	stored, err := e.tasks.GetByID(ctx, done.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsCompleted)
	assert.Nil(t, stored.CompletedAt)
}

func TestReorderTasks_RollbackOnMidBatchFailure(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	tasks := e.seedTasks(t, fx, "A", "B", "C")

	failingUoW := &testutil.FailOnNthExecUoW{
		DB:     e.db,
		FailOn: 2,
		Err:    errors.New("disk full"),
	}
	svc := NewOrderService(failingUoW, e.users, e.boards, e.columns, e.tasks, e.access, e.dispatcher)

	ids := []string{tasks[2].ID, tasks[1].ID, tasks[0].ID}
	err := svc.ReorderTasks(ctx, fx.Owner.ID, fx.Backlog.ID, ids)
	require.Error(t, err)

	// All-or-nothing: the first write must have rolled back too.
	for i, task := range tasks {
		stored, err := e.tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, i+1, stored.SortOrder, "original order preserved after rollback")
	}
}

func TestReorderTasks_ViewerRejected(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	viewer := e.addMember(t, fx.WS, "Viewer", domain.RoleViewer)

	tasks := e.seedTasks(t, fx, "A")
	err := e.orderSvc.ReorderTasks(context.Background(), viewer.ID, fx.Backlog.ID, []string{tasks[0].ID})
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestReorderColumns_RenumbersWithinBoard(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	ids := []string{fx.Done.ID, fx.Backlog.ID, fx.Doing.ID}
	require.NoError(t, e.orderSvc.ReorderColumns(ctx, fx.Owner.ID, fx.Board.ID, ids))

	for i, id := range ids {
		stored, err := e.columns.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, i+1, stored.SortOrder)
	}
}

func TestReorderColumns_ForeignColumnRejected(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	ctx := context.Background()

	otherBoard := testutil.NewTestBoard(fx.WS.ID, fx.Owner.ID, "Outro")
	require.NoError(t, e.boards.Create(ctx, otherBoard))
	foreign := testutil.NewTestColumn(otherBoard.ID, fx.Owner.ID, "Backlog")
	require.NoError(t, e.columns.Create(ctx, foreign))

	err := e.orderSvc.ReorderColumns(ctx, fx.Owner.ID, fx.Board.ID,
		[]string{fx.Backlog.ID, foreign.ID})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
