package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classferreiracode/track-my-task/internal/repository"
	"github.com/classferreiracode/track-my-task/internal/service"
)

// Server provides the HTTP handlers for the workspace task tracker.
type Server struct {
	engine      *gin.Engine
	workspaces  service.WorkspaceService
	invitations service.InvitationService
	boards      service.BoardService
	tasks       service.TaskService
	orders      service.OrderService
	comments    service.CommentService
	labels      service.LabelService
	reports     service.ReportService
	access      service.AccessService
	logger      *slog.Logger
}

// Services bundles the service dependencies for the HTTP layer.
type Services struct {
	Workspaces  service.WorkspaceService
	Invitations service.InvitationService
	Boards      service.BoardService
	Tasks       service.TaskService
	Orders      service.OrderService
	Comments    service.CommentService
	Labels      service.LabelService
	Reports     service.ReportService
	Access      service.AccessService
}

// New constructs the HTTP server with routes and middleware configured.
func New(svcs Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine:      router,
		workspaces:  svcs.Workspaces,
		invitations: svcs.Invitations,
		boards:      svcs.Boards,
		tasks:       svcs.Tasks,
		orders:      svcs.Orders,
		comments:    svcs.Comments,
		labels:      svcs.Labels,
		reports:     svcs.Reports,
		access:      svcs.Access,
		logger:      logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires the API handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api/v1")
	{
		api.GET("/healthz", s.handleHealth)

		// Invitation lookup by token is anonymous.
		api.GET("/invitations/:token", s.handleShowInvitation)

		authed := api.Group("", s.requireUser())
		{
			authed.POST("/workspaces", s.handleCreateWorkspace)
			authed.GET("/workspaces", s.handleListWorkspaces)
			authed.GET("/workspaces/:id/members", s.handleListMembers)
			authed.PATCH("/workspaces/:id/members/:userId", s.handleUpdateMember)
			authed.DELETE("/workspaces/:id/members/:userId", s.handleRemoveMember)
			authed.POST("/workspaces/:id/leave", s.handleLeaveWorkspace)
			authed.POST("/workspaces/:id/invitations", s.handleCreateInvitation)
			authed.POST("/invitations/:token/accept", s.handleAcceptInvitation)

			authed.POST("/workspaces/:id/boards", s.handleCreateBoard)
			authed.GET("/workspaces/:id/boards", s.handleListBoards)
			authed.DELETE("/boards/:id", s.handleDeleteBoard)
			authed.POST("/boards/:id/columns", s.handleCreateColumn)
			authed.GET("/boards/:id/columns", s.handleListColumns)
			authed.PUT("/boards/:id/columns/order", s.handleReorderColumns)

			authed.POST("/tasks", s.handleCreateTask)
			authed.GET("/boards/:id/tasks", s.handleListTasks)
			authed.GET("/tasks/:id", s.handleGetTask)
			authed.PATCH("/tasks/:id", s.handleUpdateTask)
			authed.DELETE("/tasks/:id", s.handleDeleteTask)
			authed.PUT("/tasks/order", s.handleReorderTasks)

			authed.POST("/tasks/:id/timer/start", s.handleStartTimer)
			authed.POST("/tasks/:id/timer/stop", s.handleStopTimer)
			authed.GET("/tasks/:id/tracked", s.handleTrackedSeconds)

			authed.POST("/tasks/:id/comments", s.handleCreateComment)
			authed.GET("/tasks/:id/comments", s.handleListComments)

			authed.POST("/labels", s.handleCreateLabel)
			authed.GET("/labels", s.handleListLabels)
			authed.POST("/tags", s.handleCreateTag)
			authed.GET("/tags", s.handleListTags)

			authed.GET("/boards/:id/report", s.handleExportReport)

			authed.POST("/broadcasting/auth", s.handleChannelAuth)
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

const userIDKey = "userID"

// requireUser resolves the acting user from the X-User-ID header. Session
// and token auth terminate upstream; the header carries the verified
// identity.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func actorID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// respondServiceError translates the service error taxonomy to HTTP.
// Authorization failures on workspace resources read as plain 404 so
// resource existence is not leaked to non-members.
func (s *Server) respondServiceError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Validation failed.",
			"errors":  gin.H{validationErr.Field: []string{validationErr.Message}},
		})
		return
	}
	if limitErr, ok := service.IsLimitExceeded(err); ok {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"message":       "Plan limit reached.",
			"limit_key":     limitErr.LimitKey,
			"limit_value":   limitErr.LimitValue,
			"current_value": limitErr.CurrentValue,
			"upgrade_url":   limitErr.UpgradeURL,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotPermitted), errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
	case errors.Is(err, service.ErrInvitationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Invitation not found."})
	case errors.Is(err, service.ErrInvitationExpired):
		c.JSON(http.StatusGone, gin.H{"message": "Invitation expired or already accepted."})
	case errors.Is(err, service.ErrInvitationMismatch):
		c.JSON(http.StatusForbidden, gin.H{"message": "Invitation addressed to a different email."})
	case errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrInvitePending),
		errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrTimerAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrNoRunningTimer):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrOwnerImmutable):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	default:
		s.logger.Error("request failed",
			slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal error."})
	}
}
