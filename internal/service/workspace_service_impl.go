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

// defaultColumns are provisioned on every new workspace's first board.
// The last one is a terminal column.
var defaultColumns = []struct {
	Name string
	Slug string
}{
	{Name: "Backlog", Slug: "backlog"},
	{Name: "Em progresso", Slug: "em-progresso"},
	{Name: "Concluído", Slug: "concluido"},
}

type workspaceService struct {
	uow         db.UnitOfWork
	users       repository.UserRepo
	workspaces  repository.WorkspaceRepo
	memberships repository.MembershipRepo
	access      AccessService
	notifier    Notifier
	observer    UseCaseObserver
}

func NewWorkspaceService(
	uow db.UnitOfWork,
	users repository.UserRepo,
	workspaces repository.WorkspaceRepo,
	memberships repository.MembershipRepo,
	access AccessService,
	notifier Notifier,
	observers ...UseCaseObserver,
) WorkspaceService {
	return &workspaceService{
		uow:         uow,
		users:       users,
		workspaces:  workspaces,
		memberships: memberships,
		access:      access,
		notifier:    notifier,
		observer:    useCaseObserverOrNoop(observers),
	}
}

func (s *workspaceService) Create(ctx context.Context, actorID, name string) (*domain.Workspace, error) {
	started := time.Now()
	workspace, err := s.create(ctx, actorID, name)
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "workspace_create",
		Duration:  time.Since(started),
		Success:   err == nil,
		Err:       err,
		Fields:    map[string]any{"actor_id": actorID},
		StartedAt: started,
	})
	return workspace, err
}

func (s *workspaceService) create(ctx context.Context, actorID, name string) (*domain.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}
	if _, err := s.users.GetByID(ctx, actorID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	workspace := &domain.Workspace{
		ID:          uuid.New().String(),
		OwnerUserID: actorID,
		Name:        name,
		Slug:        slugOrRandom(name),
		Plan:        domain.DefaultPlanKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		workspaces := repository.NewSQLiteWorkspaceRepo(tx)
		memberships := repository.NewSQLiteMembershipRepo(tx)
		boards := repository.NewSQLiteBoardRepo(tx)
		columns := repository.NewSQLiteColumnRepo(tx)
		plans := repository.NewSQLitePlanRepo(tx)

		if err := workspaces.Create(ctx, workspace); err != nil {
			return err
		}

		joinedAt := now
		owner := &domain.Membership{
			ID:          uuid.New().String(),
			WorkspaceID: workspace.ID,
			UserID:      actorID,
			Role:        domain.RoleOwner,
			IsActive:    true,
			JoinedAt:    &joinedAt,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := memberships.Create(ctx, owner); err != nil {
			return err
		}

		if err := plans.SetSubscription(ctx, &domain.WorkspaceSubscription{
			ID:          uuid.New().String(),
			WorkspaceID: workspace.ID,
			PlanKey:     domain.DefaultPlanKey,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		board := &domain.Board{
			ID:          uuid.New().String(),
			WorkspaceID: workspace.ID,
			UserID:      actorID,
			Name:        "Principal",
			Slug:        "principal",
			SortOrder:   1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := boards.Create(ctx, board); err != nil {
			return err
		}

		for i, col := range defaultColumns {
			if err := columns.Create(ctx, &domain.Column{
				ID:        uuid.New().String(),
				BoardID:   board.ID,
				UserID:    actorID,
				Name:      col.Name,
				Slug:      col.Slug,
				SortOrder: i + 1,
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return workspace, nil
}

func (s *workspaceService) List(ctx context.Context, actorID string) ([]*domain.Workspace, error) {
	return s.workspaces.ListByUser(ctx, actorID)
}

func (s *workspaceService) Members(ctx context.Context, actorID, workspaceID string) ([]domain.Member, error) {
	if _, err := s.access.RoleOf(ctx, actorID, workspaceID); err != nil {
		return nil, err
	}
	return s.memberships.ListMembers(ctx, workspaceID)
}

func (s *workspaceService) UpdateMember(ctx context.Context, actorID, workspaceID, userID string, upd MemberUpdate) error {
	if err := s.access.RequireRole(ctx, actorID, workspaceID, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return err
	}

	target, err := s.memberships.Get(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleOwner {
		return ErrOwnerImmutable
	}

	if upd.Role != nil {
		role := *upd.Role
		if role == domain.RoleOwner || !domain.ValidRoles[string(role)] {
			return NewValidationError("role", "must be one of admin, editor, member, viewer")
		}
		target.Role = role
	}
	if upd.WeeklyCapacityMinutes != nil {
		if *upd.WeeklyCapacityMinutes < 0 {
			return NewValidationError("weekly_capacity_minutes", "must not be negative")
		}
		target.WeeklyCapacityMinutes = upd.WeeklyCapacityMinutes
	}
	if upd.IsActive != nil {
		target.IsActive = *upd.IsActive
	}
	target.UpdatedAt = time.Now().UTC()

	if err := s.memberships.Update(ctx, target); err != nil {
		return err
	}
	s.notifyMemberChanged(ctx, workspaceID, userID, "member_updated")
	return nil
}

func (s *workspaceService) RemoveMember(ctx context.Context, actorID, workspaceID, userID string) error {
	if err := s.access.RequireRole(ctx, actorID, workspaceID, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return err
	}

	target, err := s.memberships.Get(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleOwner {
		return ErrOwnerImmutable
	}

	if err := s.memberships.Delete(ctx, workspaceID, userID); err != nil {
		return err
	}
	s.notifyMemberChanged(ctx, workspaceID, userID, "member_removed")
	return nil
}

func (s *workspaceService) Leave(ctx context.Context, actorID, workspaceID string) error {
	m, err := s.memberships.Get(ctx, workspaceID, actorID)
	if err != nil {
		return err
	}
	if m.Role == domain.RoleOwner {
		return ErrOwnerImmutable
	}
	return s.memberships.Delete(ctx, workspaceID, actorID)
}

func (s *workspaceService) notifyMemberChanged(ctx context.Context, workspaceID, userID, kind string) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return
	}
	s.notifier.Notify(ctx,
		[]domain.Recipient{{Name: user.Name, Email: user.Email}},
		kind,
		map[string]any{"workspace_id": workspaceID},
	)
}

// slugOrRandom slugifies the name, falling back to a random slug for
// names with no sluggable characters.
func slugOrRandom(name string) string {
	if slug := domain.Slugify(name); slug != "" {
		return slug
	}
	return uuid.New().String()[:8]
}
