package service

import (
	"context"
	"strings"
	"time"

	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/repository"
	"github.com/google/uuid"
)

type boardService struct {
	workspaces repository.WorkspaceRepo
	boards     repository.BoardRepo
	columns    repository.ColumnRepo
	access     AccessService
	gate       PlanGate
}

func NewBoardService(
	workspaces repository.WorkspaceRepo,
	boards repository.BoardRepo,
	columns repository.ColumnRepo,
	access AccessService,
	gate PlanGate,
) BoardService {
	return &boardService{
		workspaces: workspaces,
		boards:     boards,
		columns:    columns,
		access:     access,
		gate:       gate,
	}
}

func (s *boardService) CreateBoard(ctx context.Context, actorID, workspaceID, name string) (*domain.Board, error) {
	if err := s.access.RequireRole(ctx, actorID, workspaceID,
		domain.RoleOwner, domain.RoleAdmin, domain.RoleEditor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}

	workspace, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.AssertCan(ctx, workspace, domain.AbilityCreateBoard, GateContext{}); err != nil {
		return nil, err
	}

	slug := slugOrRandom(name)
	exists, err := s.boards.SlugExists(ctx, workspaceID, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	maxOrder, err := s.boards.MaxSortOrder(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	board := &domain.Board{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Name:        name,
		Slug:        slug,
		SortOrder:   maxOrder + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.boards.Create(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *boardService) ListBoards(ctx context.Context, actorID, workspaceID string) ([]*domain.Board, error) {
	if _, err := s.access.RoleOf(ctx, actorID, workspaceID); err != nil {
		return nil, err
	}
	return s.boards.ListByWorkspace(ctx, workspaceID)
}

func (s *boardService) DeleteBoard(ctx context.Context, actorID, boardID string) error {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	role, err := s.access.RoleOf(ctx, actorID, board.WorkspaceID)
	if err != nil {
		return err
	}
	if role != domain.RoleOwner && role != domain.RoleAdmin && board.UserID != actorID {
		return ErrNotPermitted
	}
	return s.boards.Delete(ctx, boardID)
}

func (s *boardService) CreateColumn(ctx context.Context, actorID, boardID, name string) (*domain.Column, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireRole(ctx, actorID, board.WorkspaceID,
		domain.RoleOwner, domain.RoleAdmin, domain.RoleEditor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}

	slug := slugOrRandom(name)
	exists, err := s.columns.SlugExists(ctx, boardID, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	maxOrder, err := s.columns.MaxSortOrder(ctx, boardID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	column := &domain.Column{
		ID:        uuid.New().String(),
		BoardID:   boardID,
		UserID:    actorID,
		Name:      name,
		Slug:      slug,
		SortOrder: maxOrder + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.columns.Create(ctx, column); err != nil {
		return nil, err
	}
	return column, nil
}

func (s *boardService) ListColumns(ctx context.Context, actorID, boardID string) ([]*domain.Column, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RoleOf(ctx, actorID, board.WorkspaceID); err != nil {
		return nil, err
	}
	return s.columns.ListByBoard(ctx, boardID)
}
