package service

import (
	"context"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/repository"
)

type orderService struct {
	uow        db.UnitOfWork
	users      repository.UserRepo
	boards     repository.BoardRepo
	columns    repository.ColumnRepo
	tasks      repository.TaskRepo
	access     AccessService
	dispatcher Dispatcher
	observer   UseCaseObserver
}

func NewOrderService(
	uow db.UnitOfWork,
	users repository.UserRepo,
	boards repository.BoardRepo,
	columns repository.ColumnRepo,
	tasks repository.TaskRepo,
	access AccessService,
	dispatcher Dispatcher,
	observers ...UseCaseObserver,
) OrderService {
	return &orderService{
		uow:        uow,
		users:      users,
		boards:     boards,
		columns:    columns,
		tasks:      tasks,
		access:     access,
		dispatcher: dispatcher,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *orderService) ReorderColumns(ctx context.Context, actorID, boardID string, orderedIDs []string) error {
	orderedIDs = dedupe(orderedIDs)
	if len(orderedIDs) == 0 {
		return NewValidationError("ordered_ids", "must not be empty")
	}

	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	if err := s.access.RequireRole(ctx, actorID, board.WorkspaceID, taskEditorRoles...); err != nil {
		return err
	}

	columns, err := s.columns.ListByIDs(ctx, boardID, orderedIDs)
	if err != nil {
		return err
	}
	if len(columns) != len(orderedIDs) {
		return NewValidationError("ordered_ids", "must reference columns of the board")
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txColumns := repository.NewSQLiteColumnRepo(tx)
		for i, id := range orderedIDs {
			if err := txColumns.UpdateSortOrder(ctx, id, i+1); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *orderService) ReorderTasks(ctx context.Context, actorID, columnID string, orderedIDs []string) error {
	started := time.Now()
	err := s.reorderTasks(ctx, actorID, columnID, orderedIDs)
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "task_reorder",
		Duration:  time.Since(started),
		Success:   err == nil,
		Err:       err,
		Fields:    map[string]any{"actor_id": actorID, "column_id": columnID, "count": len(orderedIDs)},
		StartedAt: started,
	})
	return err
}

func (s *orderService) reorderTasks(ctx context.Context, actorID, columnID string, orderedIDs []string) error {
	orderedIDs = dedupe(orderedIDs)
	if len(orderedIDs) == 0 {
		return NewValidationError("ordered_ids", "must not be empty")
	}

	column, err := s.columns.GetByID(ctx, columnID)
	if err != nil {
		return err
	}
	workspaceID, err := s.columns.WorkspaceID(ctx, columnID)
	if err != nil {
		return err
	}
	if err := s.access.RequireRole(ctx, actorID, workspaceID, taskEditorRoles...); err != nil {
		return err
	}

	loaded, err := s.tasks.ListByIDsWithWorkspace(ctx, orderedIDs)
	if err != nil {
		return err
	}
	if len(loaded) != len(orderedIDs) {
		return NewValidationError("ordered_ids", "must reference existing tasks")
	}
	byID := make(map[string]repository.TaskWithWorkspace, len(loaded))
	for _, t := range loaded {
		if t.WorkspaceID != workspaceID {
			return NewValidationError("ordered_ids", "must reference tasks of the workspace")
		}
		byID[t.Task.ID] = t
	}

	// One timestamp for every completion side effect of the batch.
	now := time.Now().UTC()
	terminal := column.IsTerminal()

	// Moves across columns produce the same activity trail as a single
	// task update, so the board history stays complete for drag and drop.
	var events []domain.Event
	for _, id := range orderedIDs {
		item := byID[id]
		if item.Task.ColumnID != columnID {
			events = append(events, domain.Event{
				Type:    domain.ActivityStatusChanged,
				TaskID:  item.Task.ID,
				BoardID: column.BoardID,
				ActorID: actorID,
				Meta:    map[string]any{"task_title": item.Task.Title, "status": column.Name},
			})
		}
		if terminal && !item.Task.IsCompleted {
			events = append(events, domain.Event{
				Type:    domain.ActivityCompleted,
				TaskID:  item.Task.ID,
				BoardID: column.BoardID,
				ActorID: actorID,
				Meta: map[string]any{
					"task_title":   item.Task.Title,
					"completed_at": now.Format(time.RFC3339),
				},
			})
		}
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		txEntries := repository.NewSQLiteTimeEntryRepo(tx)

		for i, id := range orderedIDs {
			item := byID[id]
			task := item.Task
			task.ColumnID = columnID
			task.SortOrder = i + 1
			if terminal {
				task.MarkCompleted(now)
				if err := stopRunningTimers(ctx, txEntries, task.ID, now); err != nil {
					return err
				}
			} else {
				task.ClearCompleted()
			}
			task.UpdatedAt = now
			if err := txTasks.Update(ctx, &task); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	recipientsByTask := make(map[string][]domain.Recipient, len(byID))
	for i := range events {
		recipients, ok := recipientsByTask[events[i].TaskID]
		if !ok {
			item := byID[events[i].TaskID]
			if recipients, err = notificationRecipients(ctx, s.tasks, s.users, &item.Task); err != nil {
				continue
			}
			recipientsByTask[events[i].TaskID] = recipients
		}
		events[i].Notify = recipients
	}
	s.dispatcher.Dispatch(ctx, events)
	return nil
}

// dedupe drops repeated ids, keeping first occurrences in order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
