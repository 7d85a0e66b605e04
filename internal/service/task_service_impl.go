package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/repository"
	"github.com/google/uuid"
)

var validPriorities = map[string]bool{
	"baixa": true, "normal": true, "media": true,
	"alta": true, "urgente": true, "critico": true,
}

const defaultPriority = "normal"

// taskEditorRoles may create and update tasks; viewers are read-only.
var taskEditorRoles = []domain.Role{
	domain.RoleOwner, domain.RoleAdmin, domain.RoleEditor, domain.RoleMember,
}

type taskService struct {
	uow         db.UnitOfWork
	users       repository.UserRepo
	workspaces  repository.WorkspaceRepo
	memberships repository.MembershipRepo
	boards      repository.BoardRepo
	columns     repository.ColumnRepo
	tasks       repository.TaskRepo
	entries     repository.TimeEntryRepo
	access      AccessService
	gate        PlanGate
	dispatcher  Dispatcher
	observer    UseCaseObserver
}

func NewTaskService(
	uow db.UnitOfWork,
	users repository.UserRepo,
	workspaces repository.WorkspaceRepo,
	memberships repository.MembershipRepo,
	boards repository.BoardRepo,
	columns repository.ColumnRepo,
	tasks repository.TaskRepo,
	entries repository.TimeEntryRepo,
	access AccessService,
	gate PlanGate,
	dispatcher Dispatcher,
	observers ...UseCaseObserver,
) TaskService {
	return &taskService{
		uow:         uow,
		users:       users,
		workspaces:  workspaces,
		memberships: memberships,
		boards:      boards,
		columns:     columns,
		tasks:       tasks,
		entries:     entries,
		access:      access,
		gate:        gate,
		dispatcher:  dispatcher,
		observer:    useCaseObserverOrNoop(observers),
	}
}

func (s *taskService) Create(ctx context.Context, actorID string, in TaskCreate) (*domain.Task, error) {
	started := time.Now()
	task, err := s.create(ctx, actorID, in)
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "task_create",
		Duration:  time.Since(started),
		Success:   err == nil,
		Err:       err,
		Fields:    map[string]any{"actor_id": actorID},
		StartedAt: started,
	})
	return task, err
}

func (s *taskService) create(ctx context.Context, actorID string, in TaskCreate) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, NewValidationError("title", "must not be empty")
	}
	if len(title) > 160 {
		return nil, NewValidationError("title", "must be at most 160 characters")
	}
	if len(in.Description) > 1000 {
		return nil, NewValidationError("description", "must be at most 1000 characters")
	}
	priority := in.Priority
	if priority == "" {
		priority = defaultPriority
	}
	if !validPriorities[priority] {
		return nil, NewValidationError("priority", "must be a valid priority")
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return nil, NewValidationError("ends_at", "must not be before starts_at")
	}

	column, err := s.resolveColumn(ctx, in.ColumnID, in.BoardID)
	if err != nil {
		return nil, err
	}
	board, err := s.boards.GetByID(ctx, column.BoardID)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireRole(ctx, actorID, board.WorkspaceID, taskEditorRoles...); err != nil {
		return nil, err
	}

	workspace, err := s.workspaces.GetByID(ctx, board.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.AssertCan(ctx, workspace, domain.AbilityCreateTask, GateContext{BoardID: board.ID}); err != nil {
		return nil, err
	}

	maxOrder, err := s.tasks.MaxSortOrder(ctx, column.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:          uuid.New().String(),
		ColumnID:    column.ID,
		UserID:      actorID,
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		SortOrder:   maxOrder + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if column.IsTerminal() {
		task.MarkCompleted(now)
	}

	assignees, err := s.memberAssignees(ctx, board.WorkspaceID, in.Assignees)
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		if err := tasks.Create(ctx, task); err != nil {
			return err
		}
		if in.Labels != nil {
			if err := tasks.ReplaceLabels(ctx, task.ID, in.Labels); err != nil {
				return err
			}
		}
		if in.Tags != nil {
			if err := tasks.ReplaceTags(ctx, task.ID, in.Tags); err != nil {
				return err
			}
		}
		if len(assignees) > 0 {
			return tasks.ReplaceAssignees(ctx, task.ID, assigneeRows(task.ID, actorID, assignees, now))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := []domain.Event{{
		Type:    domain.ActivityCreated,
		TaskID:  task.ID,
		BoardID: board.ID,
		ActorID: actorID,
		Meta:    map[string]any{"task_title": task.Title},
	}}
	if len(assignees) > 0 {
		events = append(events, domain.Event{
			Type:    domain.ActivityAssigned,
			TaskID:  task.ID,
			BoardID: board.ID,
			ActorID: actorID,
			Meta:    map[string]any{"task_title": task.Title, "assignees": memberIDs(assignees)},
			Notify:  memberRecipients(assignees),
		})
	}
	s.dispatcher.Dispatch(ctx, events)
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, actorID, taskID string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	workspaceID, err := s.tasks.WorkspaceID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RoleOf(ctx, actorID, workspaceID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) ListByBoard(ctx context.Context, actorID, boardID string) ([]*domain.Task, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RoleOf(ctx, actorID, board.WorkspaceID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	// Overdue detection piggybacks on reads: first sighting past the due
	// day marks the task and fires the one-shot notification.
	now := time.Now().UTC()
	for _, task := range tasks {
		if events := s.sweepOverdue(ctx, task, boardID, now); len(events) > 0 {
			s.dispatcher.Dispatch(ctx, events)
		}
	}
	return tasks, nil
}

// RunningTimers returns the actor's open entry per board task, keyed by
// task id, in one batch query. Board views use it to flag where the
// caller's clock is ticking.
func (s *taskService) RunningTimers(ctx context.Context, actorID, boardID string) (map[string]*domain.TimeEntry, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RoleOf(ctx, actorID, board.WorkspaceID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}

	running, err := s.entries.ListRunningForTasks(ctx, ids, actorID)
	if err != nil {
		return nil, err
	}
	byTask := make(map[string]*domain.TimeEntry, len(running))
	for _, entry := range running {
		byTask[entry.TaskID] = entry
	}
	return byTask, nil
}

func (s *taskService) Update(ctx context.Context, actorID, taskID string, in TaskUpdate) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	workspaceID, err := s.tasks.WorkspaceID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	boardID, err := s.tasks.BoardID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != actorID {
		if err := s.access.RequireRole(ctx, actorID, workspaceID, taskEditorRoles...); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	wasCompleted := task.IsCompleted
	var events []domain.Event

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, NewValidationError("title", "must not be empty")
		}
		if len(title) > 160 {
			return nil, NewValidationError("title", "must be at most 160 characters")
		}
		task.Title = title
	}
	if in.Description != nil {
		if len(*in.Description) > 1000 {
			return nil, NewValidationError("description", "must be at most 1000 characters")
		}
		task.Description = *in.Description
	}
	if in.Priority != nil {
		if !validPriorities[*in.Priority] {
			return nil, NewValidationError("priority", "must be a valid priority")
		}
		task.Priority = *in.Priority
	}
	if in.StartsAt != nil {
		task.StartsAt = in.StartsAt
	}
	if in.EndsAt != nil {
		task.EndsAt = in.EndsAt
	}
	if task.StartsAt != nil && task.EndsAt != nil && task.EndsAt.Before(*task.StartsAt) {
		return nil, NewValidationError("ends_at", "must not be before starts_at")
	}

	// completionSet is true whenever this call marks the task completed,
	// even when it already was. Any running timer stops in that case too.
	completionSet := false
	switch {
	case in.ColumnID != nil && *in.ColumnID != task.ColumnID:
		column, err := s.columns.GetByID(ctx, *in.ColumnID)
		if err != nil {
			return nil, err
		}
		if column.BoardID != boardID {
			return nil, NewValidationError("column_id", "column belongs to a different board")
		}
		maxOrder, err := s.tasks.MaxSortOrder(ctx, column.ID)
		if err != nil {
			return nil, err
		}
		task.ColumnID = column.ID
		task.SortOrder = maxOrder + 1
		// Column membership wins over any explicit completion toggle.
		if column.IsTerminal() {
			task.MarkCompleted(now)
			completionSet = true
		} else {
			task.ClearCompleted()
		}
		events = append(events, domain.Event{
			Type:    domain.ActivityStatusChanged,
			TaskID:  task.ID,
			BoardID: boardID,
			ActorID: actorID,
			Meta:    map[string]any{"task_title": task.Title, "status": column.Name},
		})
	case in.IsCompleted != nil:
		if *in.IsCompleted {
			task.MarkCompleted(now)
			completionSet = true
		} else {
			task.ClearCompleted()
		}
	}

	if task.IsCompleted && !wasCompleted {
		events = append(events, domain.Event{
			Type:    domain.ActivityCompleted,
			TaskID:  task.ID,
			BoardID: boardID,
			ActorID: actorID,
			Meta: map[string]any{
				"task_title":   task.Title,
				"completed_at": task.CompletedAt.Format(time.RFC3339),
			},
		})
	}

	var assignees []domain.Member
	if in.Assignees != nil {
		assignees, err = s.memberAssignees(ctx, workspaceID, in.Assignees)
		if err != nil {
			return nil, err
		}
	}

	task.UpdatedAt = now
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		if completionSet {
			if err := stopRunningTimers(ctx, repository.NewSQLiteTimeEntryRepo(tx), task.ID, now); err != nil {
				return err
			}
		}
		if in.Labels != nil {
			if err := tasks.ReplaceLabels(ctx, task.ID, in.Labels); err != nil {
				return err
			}
		}
		if in.Tags != nil {
			if err := tasks.ReplaceTags(ctx, task.ID, in.Tags); err != nil {
				return err
			}
		}
		if in.Assignees != nil {
			return tasks.ReplaceAssignees(ctx, task.ID, assigneeRows(task.ID, actorID, assignees, now))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if in.Assignees != nil && len(assignees) > 0 {
		events = append(events, domain.Event{
			Type:    domain.ActivityAssigned,
			TaskID:  task.ID,
			BoardID: boardID,
			ActorID: actorID,
			Meta:    map[string]any{"task_title": task.Title, "assignees": memberIDs(assignees)},
			Notify:  memberRecipients(assignees),
		})
	}

	// Fill in notification recipients for mail-bearing event types.
	recipients, recErr := s.taskRecipients(ctx, task)
	for i := range events {
		if recErr == nil && len(events[i].Notify) == 0 &&
			(events[i].Type == domain.ActivityStatusChanged || events[i].Type == domain.ActivityCompleted) {
			events[i].Notify = recipients
		}
	}

	events = append(events, s.sweepOverdue(ctx, task, boardID, now)...)
	s.dispatcher.Dispatch(ctx, events)
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, actorID, taskID string) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	workspaceID, err := s.tasks.WorkspaceID(ctx, taskID)
	if err != nil {
		return err
	}
	boardID, err := s.tasks.BoardID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.UserID != actorID {
		if err := s.access.RequireRole(ctx, actorID, workspaceID, domain.RoleOwner, domain.RoleAdmin); err != nil {
			return err
		}
	}

	// Recipients must be loaded before the row and its join tables go.
	recipients, err := s.taskRecipients(ctx, task)
	if err != nil {
		return err
	}

	s.dispatcher.Dispatch(ctx, []domain.Event{{
		Type:    domain.ActivityDeleted,
		TaskID:  task.ID,
		BoardID: boardID,
		ActorID: actorID,
		Meta:    map[string]any{"task_title": task.Title},
		Notify:  recipients,
	}})
	return s.tasks.Delete(ctx, taskID)
}

func (s *taskService) StartTimer(ctx context.Context, actorID, taskID string) (*domain.TimeEntry, error) {
	workspaceID, err := s.tasks.WorkspaceID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireRole(ctx, actorID, workspaceID, taskEditorRoles...); err != nil {
		return nil, err
	}

	if _, err := s.entries.ActiveForTaskUser(ctx, taskID, actorID); err == nil {
		return nil, ErrTimerAlreadyRunning
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	workspace, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.AssertCan(ctx, workspace, domain.AbilityStartTimer, GateContext{UserID: actorID}); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &domain.TimeEntry{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		UserID:    actorID,
		StartedAt: now,
		CreatedAt: now,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *taskService) StopTimer(ctx context.Context, actorID, taskID string) (*domain.TimeEntry, error) {
	workspaceID, err := s.tasks.WorkspaceID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RoleOf(ctx, actorID, workspaceID); err != nil {
		return nil, err
	}

	entry, err := s.entries.ActiveForTaskUser(ctx, taskID, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoRunningTimer
		}
		return nil, err
	}

	entry.Stop(time.Now().UTC())
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *taskService) TrackedSeconds(ctx context.Context, actorID, taskID string, start, end time.Time) (int, error) {
	workspaceID, err := s.tasks.WorkspaceID(ctx, taskID)
	if err != nil {
		return 0, err
	}
	if _, err := s.access.RoleOf(ctx, actorID, workspaceID); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	if end.After(now) {
		end = now
	}

	entries, err := s.entries.ListByTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, e := range entries {
		total += e.WindowSeconds(start, end)
	}
	return total, nil
}

// sweepOverdue applies the one-shot overdue marker and returns the event
// to dispatch, or nothing when the task is not newly overdue.
func (s *taskService) sweepOverdue(ctx context.Context, task *domain.Task, boardID string, now time.Time) []domain.Event {
	if !task.IsOverdue(now) {
		return nil
	}
	notifiedAt := now
	task.OverdueNotifiedAt = &notifiedAt
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil
	}
	event := domain.Event{
		Type:    domain.ActivityOverdue,
		TaskID:  task.ID,
		BoardID: boardID,
		Meta: map[string]any{
			"task_title": task.Title,
			"due_date":   task.EndsAt.Format("2006-01-02"),
		},
	}
	if recipients, err := s.taskRecipients(ctx, task); err == nil {
		event.Notify = recipients
	}
	return []domain.Event{event}
}

// stopRunningTimers closes every open entry on the task against the given
// clock. Callers pass a tx-scoped repo so the stop lands with the rest of
// the mutation.
func stopRunningTimers(ctx context.Context, entries repository.TimeEntryRepo, taskID string, now time.Time) error {
	running, err := entries.ActiveForTask(ctx, taskID)
	if err != nil {
		return err
	}
	for _, entry := range running {
		entry.Stop(now)
		if err := entries.Update(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// taskRecipients builds the notification set: assignees then the creator,
// deduplicated by email.
func (s *taskService) taskRecipients(ctx context.Context, task *domain.Task) ([]domain.Recipient, error) {
	return notificationRecipients(ctx, s.tasks, s.users, task)
}

func notificationRecipients(ctx context.Context, tasks repository.TaskRepo, users repository.UserRepo, task *domain.Task) ([]domain.Recipient, error) {
	assignees, err := tasks.ListAssignees(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	recipients := memberRecipients(assignees)
	if creator, err := users.GetByID(ctx, task.UserID); err == nil {
		recipients = append(recipients, domain.Recipient{Name: creator.Name, Email: creator.Email})
	}
	return domain.UniqueRecipients(recipients...), nil
}

// memberAssignees filters candidate user ids down to workspace members.
func (s *taskService) memberAssignees(ctx context.Context, workspaceID string, userIDs []string) ([]domain.Member, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	members, err := s.memberships.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Member, len(members))
	for _, m := range members {
		byID[m.UserID] = m
	}
	var out []domain.Member
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *taskService) resolveColumn(ctx context.Context, columnID, boardID string) (*domain.Column, error) {
	if columnID != "" {
		return s.columns.GetByID(ctx, columnID)
	}
	if boardID == "" {
		return nil, NewValidationError("column_id", "column or board must be given")
	}
	return s.columns.FirstByBoard(ctx, boardID)
}

func assigneeRows(taskID, actorID string, members []domain.Member, now time.Time) []domain.Assignee {
	rows := make([]domain.Assignee, 0, len(members))
	for _, m := range members {
		rows = append(rows, domain.Assignee{
			TaskID:           taskID,
			UserID:           m.UserID,
			AssignedByUserID: actorID,
			AssignedAt:       now,
		})
	}
	return rows
}

func memberRecipients(members []domain.Member) []domain.Recipient {
	recipients := make([]domain.Recipient, 0, len(members))
	for _, m := range members {
		recipients = append(recipients, domain.Recipient{Name: m.Name, Email: m.Email})
	}
	return recipients
}

func memberIDs(members []domain.Member) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids
}
