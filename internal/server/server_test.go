package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/notify"
	"github.com/classferreiracode/track-my-task/internal/repository"
	"github.com/classferreiracode/track-my-task/internal/service"
	"github.com/classferreiracode/track-my-task/internal/testutil"
)

type testDB struct {
	users repository.UserRepo
	plans repository.PlanRepo
}

func newTestServer(t *testing.T) (*Server, *testDB) {
	t.Helper()
	database := testutil.NewTestDB(t)

	users := repository.NewSQLiteUserRepo(database)
	workspaces := repository.NewSQLiteWorkspaceRepo(database)
	memberships := repository.NewSQLiteMembershipRepo(database)
	invitations := repository.NewSQLiteInvitationRepo(database)
	boards := repository.NewSQLiteBoardRepo(database)
	columns := repository.NewSQLiteColumnRepo(database)
	tasks := repository.NewSQLiteTaskRepo(database)
	entries := repository.NewSQLiteTimeEntryRepo(database)
	labels := repository.NewSQLiteLabelRepo(database)
	comments := repository.NewSQLiteCommentRepo(database)
	activities := repository.NewSQLiteActivityRepo(database)
	plans := repository.NewSQLitePlanRepo(database)
	exports := repository.NewSQLiteExportLogRepo(database)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := db.NewSQLiteUnitOfWork(database)
	notifier := notify.NoopNotifier{}
	broadcaster := notify.NoopBroadcaster{}

	access := service.NewAccessService(memberships, tasks, boards)
	gate := service.NewPlanGate(plans, memberships, boards, tasks, entries, exports, "/billing/upgrade")
	dispatcher := service.NewDispatcher(activities, notifier, broadcaster, logger)

	srv := New(Services{
		Workspaces:  service.NewWorkspaceService(uow, users, workspaces, memberships, access, notifier),
		Invitations: service.NewInvitationService(uow, users, workspaces, memberships, invitations, access, gate, notifier),
		Boards:      service.NewBoardService(workspaces, boards, columns, access, gate),
		Tasks:       service.NewTaskService(uow, users, workspaces, memberships, boards, columns, tasks, entries, access, gate, dispatcher),
		Orders:      service.NewOrderService(uow, users, boards, columns, tasks, access, dispatcher),
		Comments:    service.NewCommentService(uow, memberships, tasks, comments, activities, access, dispatcher),
		Labels:      service.NewLabelService(labels),
		Reports:     service.NewReportService(workspaces, boards, entries, exports, access, gate),
		Access:      access,
	}, logger)

	return srv, &testDB{users: users, plans: plans}
}

func doJSON(t *testing.T, srv *Server, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func seedActor(t *testing.T, d *testDB) *domain.User {
	t.Helper()
	user := testutil.NewTestUser("Owner")
	require.NoError(t, d.users.Create(context.Background(), user))
	return user
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/workspaces", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateWorkspaceFlow(t *testing.T) {
	srv, d := newTestServer(t)
	actor := seedActor(t, d)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/workspaces", actor.ID,
		map[string]string{"name": "Minha Equipe"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "minha-equipe", data["slug"])
	assert.Equal(t, "free", data["plan"])

	// The default board and columns come with it.
	wsID := data["id"].(string)
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/workspaces/"+wsID+"/boards", actor.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	boards := decodeBody(t, rec)["data"].([]any)
	require.Len(t, boards, 1)
}

func TestValidationErrorShape(t *testing.T) {
	srv, d := newTestServer(t)
	actor := seedActor(t, d)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/workspaces", actor.ID,
		map[string]string{"name": "  "})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Validation failed.", body["message"])
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "name")
}

func TestPlanLimitErrorShape(t *testing.T) {
	srv, d := newTestServer(t)
	actor := seedActor(t, d)

	plan, err := d.plans.EnsurePlan(context.Background(), "free", "Free", "")
	require.NoError(t, err)
	one := 1
	require.NoError(t, d.plans.UpsertLimit(context.Background(), plan.ID, domain.LimitMaxBoards, &one))

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/workspaces", actor.ID,
		map[string]string{"name": "Equipe"})
	require.Equal(t, http.StatusCreated, rec.Code)
	wsID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	// The provisioning board already fills the quota.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/workspaces/"+wsID+"/boards", actor.ID,
		map[string]string{"name": "Extra"})
	require.Equal(t, http.StatusPaymentRequired, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "max_boards", body["limit_key"])
	assert.Equal(t, float64(1), body["limit_value"])
	assert.Equal(t, "/billing/upgrade", body["upgrade_url"])
}

func TestNotPermittedReadsAsNotFound(t *testing.T) {
	srv, d := newTestServer(t)
	owner := seedActor(t, d)
	stranger := testutil.NewTestUser("Stranger")
	require.NoError(t, d.users.Create(context.Background(), stranger))

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/workspaces", owner.ID,
		map[string]string{"name": "Equipe"})
	require.Equal(t, http.StatusCreated, rec.Code)
	wsID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/workspaces/"+wsID+"/members", stranger.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownInvitationToken(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/invitations/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChannelAuth(t *testing.T) {
	srv, d := newTestServer(t)
	owner := seedActor(t, d)
	stranger := testutil.NewTestUser("Stranger")
	require.NoError(t, d.users.Create(context.Background(), stranger))

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/workspaces", owner.ID,
		map[string]string{"name": "Equipe"})
	require.Equal(t, http.StatusCreated, rec.Code)
	wsID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/workspaces/"+wsID+"/boards", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	boardID := decodeBody(t, rec)["data"].([]any)[0].(map[string]any)["id"].(string)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/broadcasting/auth", owner.ID,
		map[string]string{"channel_name": "boards." + boardID})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/broadcasting/auth", stranger.ID,
		map[string]string{"channel_name": "boards." + boardID})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReportCSVFormat(t *testing.T) {
	srv, d := newTestServer(t)
	actor := seedActor(t, d)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/workspaces", actor.ID,
		map[string]string{"name": "Equipe"})
	require.Equal(t, http.StatusCreated, rec.Code)
	wsID := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/workspaces/"+wsID+"/boards", actor.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	boardID := decodeBody(t, rec)["data"].([]any)[0].(map[string]any)["id"].(string)

	rec = doJSON(t, srv, http.MethodGet,
		"/api/v1/boards/"+boardID+"/report?start=2026-03-01&end=2026-03-31", actor.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	raw := rec.Body.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), "UTF-8 BOM")
	header := strings.SplitN(string(raw[3:]), "\n", 2)[0]
	assert.Equal(t, "Task;Status;Day;Play;Pause;Total (minutes);Total (hours)",
		strings.TrimRight(header, "\r"))

	rec = doJSON(t, srv, http.MethodGet,
		"/api/v1/boards/"+boardID+"/report?start=March&end=2026-03-31", actor.ID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
