package service

import (
	"context"
	"errors"
	"strings"

	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/repository"
)

type accessService struct {
	memberships repository.MembershipRepo
	tasks       repository.TaskRepo
	boards      repository.BoardRepo
}

func NewAccessService(memberships repository.MembershipRepo, tasks repository.TaskRepo, boards repository.BoardRepo) AccessService {
	return &accessService{memberships: memberships, tasks: tasks, boards: boards}
}

func (s *accessService) RoleOf(ctx context.Context, userID, workspaceID string) (domain.Role, error) {
	m, err := s.memberships.Get(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotPermitted
		}
		return "", err
	}
	if !m.IsActive {
		return "", ErrNotPermitted
	}
	return m.Role, nil
}

func (s *accessService) RequireRole(ctx context.Context, userID, workspaceID string, allowed ...domain.Role) error {
	role, err := s.RoleOf(ctx, userID, workspaceID)
	if err != nil {
		return err
	}
	for _, r := range allowed {
		if role == r {
			return nil
		}
	}
	return ErrNotPermitted
}

func (s *accessService) CanJoinChannel(ctx context.Context, userID, channel string) (bool, error) {
	var workspaceID string
	var err error
	switch {
	case strings.HasPrefix(channel, "tasks."):
		workspaceID, err = s.tasks.WorkspaceID(ctx, strings.TrimPrefix(channel, "tasks."))
	case strings.HasPrefix(channel, "boards."):
		var board *domain.Board
		board, err = s.boards.GetByID(ctx, strings.TrimPrefix(channel, "boards."))
		if err == nil {
			workspaceID = board.WorkspaceID
		}
	default:
		return false, nil
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if _, err := s.RoleOf(ctx, userID, workspaceID); err != nil {
		if errors.Is(err, ErrNotPermitted) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
