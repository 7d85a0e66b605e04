package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/repository"
	"github.com/classferreiracode/track-my-task/internal/testutil"
)

// captureNotifier records notification intents for assertions.
type captureNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

type notifyCall struct {
	Kind       string
	Recipients []domain.Recipient
	Payload    map[string]any
}

func (n *captureNotifier) Notify(_ context.Context, recipients []domain.Recipient, kind string, payload map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{Kind: kind, Recipients: recipients, Payload: payload})
}

func (n *captureNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = nil
}

func (n *captureNotifier) callsOfKind(kind string) []notifyCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notifyCall
	for _, c := range n.calls {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// captureBroadcaster records published channel events.
type captureBroadcaster struct {
	mu       sync.Mutex
	channels []string
}

func (b *captureBroadcaster) Publish(_ context.Context, channel, _ string, _ map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.channels = append(b.channels, channel)
}

type env struct {
	db          *sql.DB
	uow         db.UnitOfWork
	users       repository.UserRepo
	workspaces  repository.WorkspaceRepo
	memberships repository.MembershipRepo
	invitations repository.InvitationRepo
	boards      repository.BoardRepo
	columns     repository.ColumnRepo
	tasks       repository.TaskRepo
	entries     repository.TimeEntryRepo
	labels      repository.LabelRepo
	comments    repository.CommentRepo
	activities  repository.ActivityRepo
	plans       repository.PlanRepo
	exports     repository.ExportLogRepo

	notifier    *captureNotifier
	broadcaster *captureBroadcaster
	access      AccessService
	gate        PlanGate
	dispatcher  Dispatcher

	workspaceSvc  WorkspaceService
	invitationSvc InvitationService
	boardSvc      BoardService
	taskSvc       TaskService
	orderSvc      OrderService
	commentSvc    CommentService
	labelSvc      LabelService
	reportSvc     ReportService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	database := testutil.NewTestDB(t)

	e := &env{
		db:          database,
		uow:         testutil.NewTestUoW(database),
		users:       repository.NewSQLiteUserRepo(database),
		workspaces:  repository.NewSQLiteWorkspaceRepo(database),
		memberships: repository.NewSQLiteMembershipRepo(database),
		invitations: repository.NewSQLiteInvitationRepo(database),
		boards:      repository.NewSQLiteBoardRepo(database),
		columns:     repository.NewSQLiteColumnRepo(database),
		tasks:       repository.NewSQLiteTaskRepo(database),
		entries:     repository.NewSQLiteTimeEntryRepo(database),
		labels:      repository.NewSQLiteLabelRepo(database),
		comments:    repository.NewSQLiteCommentRepo(database),
		activities:  repository.NewSQLiteActivityRepo(database),
		plans:       repository.NewSQLitePlanRepo(database),
		exports:     repository.NewSQLiteExportLogRepo(database),
		notifier:    &captureNotifier{},
		broadcaster: &captureBroadcaster{},
	}

	e.access = NewAccessService(e.memberships, e.tasks, e.boards)
	e.gate = NewPlanGate(e.plans, e.memberships, e.boards, e.tasks, e.entries, e.exports, "/billing/upgrade")
	e.dispatcher = NewDispatcher(e.activities, e.notifier, e.broadcaster, nil)

	e.workspaceSvc = NewWorkspaceService(e.uow, e.users, e.workspaces, e.memberships, e.access, e.notifier)
	e.invitationSvc = NewInvitationService(e.uow, e.users, e.workspaces, e.memberships, e.invitations, e.access, e.gate, e.notifier)
	e.boardSvc = NewBoardService(e.workspaces, e.boards, e.columns, e.access, e.gate)
	e.taskSvc = NewTaskService(e.uow, e.users, e.workspaces, e.memberships, e.boards, e.columns, e.tasks, e.entries, e.access, e.gate, e.dispatcher)
	e.orderSvc = NewOrderService(e.uow, e.users, e.boards, e.columns, e.tasks, e.access, e.dispatcher)
	e.commentSvc = NewCommentService(e.uow, e.memberships, e.tasks, e.comments, e.activities, e.access, e.dispatcher)
	e.labelSvc = NewLabelService(e.labels)
	e.reportSvc = NewReportService(e.workspaces, e.boards, e.entries, e.exports, e.access, e.gate)
	return e
}

// seedFreePlan writes the shipped free tier limits.
func (e *env) seedFreePlan(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	plan, err := e.plans.EnsurePlan(ctx, "free", "Free", "")
	require.NoError(t, err)
	limits := map[string]*int{
		domain.LimitMaxMembers:          intPtr(3),
		domain.LimitMaxBoards:           intPtr(3),
		domain.LimitMaxExportsPerMonth:  intPtr(1),
		domain.LimitActiveTimersPerUser: intPtr(1),
	}
	for key, value := range limits {
		require.NoError(t, e.plans.UpsertLimit(ctx, plan.ID, key, value))
	}
}

// fixture is a seeded workspace with an owner, one board and three
// columns, the last of which is terminal.
type fixture struct {
	Owner   *domain.User
	WS      *domain.Workspace
	Board   *domain.Board
	Backlog *domain.Column
	Doing   *domain.Column
	Done    *domain.Column
}

func (e *env) seedWorkspace(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	owner := testutil.NewTestUser("Owner")
	require.NoError(t, e.users.Create(ctx, owner))
	ws := testutil.NewTestWorkspace(owner.ID, "Acme")
	require.NoError(t, e.workspaces.Create(ctx, ws))
	require.NoError(t, e.memberships.Create(ctx,
		testutil.NewTestMembership(ws.ID, owner.ID, testutil.WithRole(domain.RoleOwner))))

	board := testutil.NewTestBoard(ws.ID, owner.ID, "Principal")
	require.NoError(t, e.boards.Create(ctx, board))

	backlog := testutil.NewTestColumn(board.ID, owner.ID, "Backlog", testutil.WithColumnSortOrder(1))
	doing := testutil.NewTestColumn(board.ID, owner.ID, "Em progresso", testutil.WithColumnSortOrder(2))
	done := testutil.NewTestColumn(board.ID, owner.ID, "Done", testutil.WithColumnSortOrder(3))
	require.NoError(t, e.columns.Create(ctx, backlog))
	require.NoError(t, e.columns.Create(ctx, doing))
	require.NoError(t, e.columns.Create(ctx, done))
	require.True(t, done.IsTerminal())

	return &fixture{Owner: owner, WS: ws, Board: board, Backlog: backlog, Doing: doing, Done: done}
}

// addMember creates a user and joins them to the workspace with the role.
func (e *env) addMember(t *testing.T, ws *domain.Workspace, name string, role domain.Role) *domain.User {
	t.Helper()
	ctx := context.Background()
	user := testutil.NewTestUser(name)
	require.NoError(t, e.users.Create(ctx, user))
	require.NoError(t, e.memberships.Create(ctx,
		testutil.NewTestMembership(ws.ID, user.ID, testutil.WithRole(role))))
	return user
}

func intPtr(v int) *int { return &v }
