package service

import (
	"context"
	"strings"
	"time"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/repository"
	"github.com/google/uuid"
)

type commentService struct {
	uow         db.UnitOfWork
	memberships repository.MembershipRepo
	tasks       repository.TaskRepo
	comments    repository.CommentRepo
	activities  repository.ActivityRepo
	access      AccessService
	dispatcher  Dispatcher
}

func NewCommentService(
	uow db.UnitOfWork,
	memberships repository.MembershipRepo,
	tasks repository.TaskRepo,
	comments repository.CommentRepo,
	activities repository.ActivityRepo,
	access AccessService,
	dispatcher Dispatcher,
) CommentService {
	return &commentService{
		uow:         uow,
		memberships: memberships,
		tasks:       tasks,
		comments:    comments,
		activities:  activities,
		access:      access,
		dispatcher:  dispatcher,
	}
}

func (s *commentService) Add(ctx context.Context, actorID, taskID, body string) (*domain.Comment, []domain.Member, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil, NewValidationError("body", "must not be empty")
	}
	if len(body) > 2000 {
		return nil, nil, NewValidationError("body", "must be at most 2000 characters")
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	workspaceID, err := s.tasks.WorkspaceID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	boardID, err := s.tasks.BoardID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.access.RoleOf(ctx, actorID, workspaceID); err != nil {
		return nil, nil, err
	}

	members, err := s.memberships.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, nil, err
	}
	mentioned := domain.ResolveMentions(body, members)

	comment := &domain.Comment{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		UserID:    actorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		comments := repository.NewSQLiteCommentRepo(tx)
		if err := comments.Create(ctx, comment); err != nil {
			return err
		}
		if len(mentioned) > 0 {
			return comments.ReplaceMentions(ctx, comment.ID, memberIDs(mentioned))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.dispatcher.Dispatch(ctx, []domain.Event{{
		Type:    domain.ActivityCommented,
		TaskID:  taskID,
		BoardID: boardID,
		ActorID: actorID,
		Meta: map[string]any{
			"task_title": task.Title,
			"comment_id": comment.ID,
		},
		Notify: memberRecipients(mentioned),
	}})
	return comment, mentioned, nil
}

func (s *commentService) List(ctx context.Context, actorID, taskID string) ([]*domain.Comment, []*domain.Activity, error) {
	workspaceID, err := s.tasks.WorkspaceID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.access.RoleOf(ctx, actorID, workspaceID); err != nil {
		return nil, nil, err
	}

	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	activities, err := s.activities.ListByTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	return comments, activities, nil
}
