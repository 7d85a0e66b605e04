package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/service"
)

const dateLayout = "2006-01-02"

type taskCreateRequest struct {
	ColumnID    string   `json:"column_id"`
	BoardID     string   `json:"board_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	StartsAt    string   `json:"starts_at"`
	EndsAt      string   `json:"ends_at"`
	Labels      []string `json:"labels"`
	Tags        []string `json:"tags"`
	Assignees   []string `json:"assignees"`
}

type taskUpdateRequest struct {
	ColumnID    *string  `json:"column_id"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Priority    *string  `json:"priority"`
	StartsAt    *string  `json:"starts_at"`
	EndsAt      *string  `json:"ends_at"`
	IsCompleted *bool    `json:"is_completed"`
	Labels      []string `json:"labels"`
	Tags        []string `json:"tags"`
	Assignees   []string `json:"assignees"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload."})
		return
	}

	in := service.TaskCreate{
		ColumnID:    req.ColumnID,
		BoardID:     req.BoardID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Labels:      req.Labels,
		Tags:        req.Tags,
		Assignees:   req.Assignees,
	}
	var ok bool
	if in.StartsAt, ok = parseDate(c, "starts_at", req.StartsAt); !ok {
		return
	}
	if in.EndsAt, ok = parseDate(c, "ends_at", req.EndsAt); !ok {
		return
	}

	task, err := s.tasks.Create(c.Request.Context(), actorID(c), in)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": taskResponse(task)})
}

func (s *Server) handleListTasks(c *gin.Context) {
	actor := actorID(c)
	boardID := c.Param("id")
	tasks, err := s.tasks.ListByBoard(c.Request.Context(), actor, boardID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	running, err := s.tasks.RunningTimers(c.Request.Context(), actor, boardID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(tasks))
	for _, t := range tasks {
		resp := taskResponse(t)
		if entry, ok := running[t.ID]; ok {
			resp["running_timer"] = entryResponse(entry)
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.tasks.GetByID(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": taskResponse(task)})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var req taskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload."})
		return
	}

	in := service.TaskUpdate{
		ColumnID:    req.ColumnID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		IsCompleted: req.IsCompleted,
		Labels:      req.Labels,
		Tags:        req.Tags,
		Assignees:   req.Assignees,
	}
	var ok bool
	if req.StartsAt != nil {
		if in.StartsAt, ok = parseDate(c, "starts_at", *req.StartsAt); !ok {
			return
		}
	}
	if req.EndsAt != nil {
		if in.EndsAt, ok = parseDate(c, "ends_at", *req.EndsAt); !ok {
			return
		}
	}

	task, err := s.tasks.Update(c.Request.Context(), actorID(c), c.Param("id"), in)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": taskResponse(task)})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.tasks.Delete(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted."})
}

func (s *Server) handleReorderTasks(c *gin.Context) {
	var req struct {
		ColumnID   string   `json:"column_id"`
		OrderedIDs []string `json:"ordered_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload."})
		return
	}

	err := s.orders.ReorderTasks(c.Request.Context(), actorID(c), req.ColumnID, req.OrderedIDs)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task order updated."})
}

func (s *Server) handleStartTimer(c *gin.Context) {
	entry, err := s.tasks.StartTimer(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		s.respondTimerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": entryResponse(entry)})
}

func (s *Server) handleStopTimer(c *gin.Context) {
	entry, err := s.tasks.StopTimer(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		s.respondTimerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entryResponse(entry)})
}

// respondTimerError maps rejections on the caller's own timer to 403
// instead of the opaque 404 used for workspace resources.
func (s *Server) respondTimerError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotPermitted) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden."})
		return
	}
	s.respondServiceError(c, err)
}

func (s *Server) handleTrackedSeconds(c *gin.Context) {
	now := time.Now().UTC()
	var start time.Time
	window := c.DefaultQuery("window", "day")
	switch window {
	case "day":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case "week":
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		start = day.AddDate(0, 0, -(weekday - 1))
	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Validation failed.",
			"errors":  gin.H{"window": []string{"must be one of day, week, month"}},
		})
		return
	}

	total, err := s.tasks.TrackedSeconds(c.Request.Context(), actorID(c), c.Param("id"), start, now)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"window":        window,
		"total_seconds": total,
	}})
}

func (s *Server) handleCreateComment(c *gin.Context) {
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload."})
		return
	}

	comment, mentioned, err := s.comments.Add(c.Request.Context(), actorID(c), c.Param("id"), req.Body)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	mentions := make([]gin.H, 0, len(mentioned))
	for _, m := range mentioned {
		mentions = append(mentions, gin.H{"user_id": m.UserID, "name": m.Name})
	}
	c.JSON(http.StatusCreated, gin.H{"data": gin.H{
		"id":         comment.ID,
		"task_id":    comment.TaskID,
		"user_id":    comment.UserID,
		"body":       comment.Body,
		"created_at": comment.CreatedAt.Format(time.RFC3339),
		"mentions":   mentions,
	}})
}

func (s *Server) handleListComments(c *gin.Context) {
	comments, activities, err := s.comments.List(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	commentsOut := make([]gin.H, 0, len(comments))
	for _, comment := range comments {
		commentsOut = append(commentsOut, gin.H{
			"id":         comment.ID,
			"user_id":    comment.UserID,
			"body":       comment.Body,
			"created_at": comment.CreatedAt.Format(time.RFC3339),
		})
	}
	activitiesOut := make([]gin.H, 0, len(activities))
	for _, a := range activities {
		activitiesOut = append(activitiesOut, gin.H{
			"id":         a.ID,
			"user_id":    a.UserID,
			"type":       string(a.Type),
			"meta":       a.Meta,
			"created_at": a.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"comments":   commentsOut,
		"activities": activitiesOut,
	}})
}

func parseDate(c *gin.Context, field, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Validation failed.",
			"errors":  gin.H{field: []string{"must be a date in YYYY-MM-DD format"}},
		})
		return nil, false
	}
	return &t, true
}

func taskResponse(t *domain.Task) gin.H {
	out := gin.H{
		"id":           t.ID,
		"column_id":    t.ColumnID,
		"user_id":      t.UserID,
		"title":        t.Title,
		"description":  t.Description,
		"priority":     t.Priority,
		"sort_order":   t.SortOrder,
		"is_completed": t.IsCompleted,
	}
	if t.StartsAt != nil {
		out["starts_at"] = t.StartsAt.Format(dateLayout)
	}
	if t.EndsAt != nil {
		out["ends_at"] = t.EndsAt.Format(dateLayout)
	}
	if t.CompletedAt != nil {
		out["completed_at"] = t.CompletedAt.Format(time.RFC3339)
	}
	return out
}

func entryResponse(e *domain.TimeEntry) gin.H {
	out := gin.H{
		"id":               e.ID,
		"task_id":          e.TaskID,
		"user_id":          e.UserID,
		"started_at":       e.StartedAt.Format(time.RFC3339),
		"duration_seconds": e.DurationSeconds,
	}
	if e.EndedAt != nil {
		out["ended_at"] = e.EndedAt.Format(time.RFC3339)
	}
	return out
}
