package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/repository"
	"github.com/google/uuid"
)

type dispatcher struct {
	activities  repository.ActivityRepo
	notifier    Notifier
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewDispatcher builds the event dispatcher. Activity rows are written
// first; notification and broadcast fan-out is best effort and never
// blocks the caller's result.
func NewDispatcher(activities repository.ActivityRepo, notifier Notifier, broadcaster Broadcaster, logger *slog.Logger) Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &dispatcher{
		activities:  activities,
		notifier:    notifier,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, events []domain.Event) {
	for _, event := range events {
		d.record(ctx, event)

		payload := map[string]any{"task_id": event.TaskID}
		for k, v := range event.Meta {
			payload[k] = v
		}

		if recipients := domain.UniqueRecipients(event.Notify...); len(recipients) > 0 {
			d.notifier.Notify(ctx, recipients, string(event.Type), payload)
		}

		d.broadcaster.Publish(ctx, "tasks."+event.TaskID, string(event.Type), payload)
		if event.BoardID != "" {
			d.broadcaster.Publish(ctx, "boards."+event.BoardID, string(event.Type), payload)
		}
	}
}

func (d *dispatcher) record(ctx context.Context, event domain.Event) {
	activity := &domain.Activity{
		ID:        uuid.New().String(),
		TaskID:    event.TaskID,
		Type:      event.Type,
		Meta:      event.Meta,
		CreatedAt: time.Now().UTC(),
	}
	if event.ActorID != "" {
		actorID := event.ActorID
		activity.UserID = &actorID
	}
	if err := d.activities.Create(ctx, activity); err != nil {
		d.logger.ErrorContext(ctx, "activity write failed",
			"task_id", event.TaskID, "type", string(event.Type), "error", err)
	}
}
