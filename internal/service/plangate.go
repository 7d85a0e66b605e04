package service

import (
	"context"
	"errors"
	"time"

	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/repository"
)

type planGate struct {
	plans       repository.PlanRepo
	memberships repository.MembershipRepo
	boards      repository.BoardRepo
	tasks       repository.TaskRepo
	entries     repository.TimeEntryRepo
	exports     repository.ExportLogRepo
	upgradeURL  string
}

func NewPlanGate(
	plans repository.PlanRepo,
	memberships repository.MembershipRepo,
	boards repository.BoardRepo,
	tasks repository.TaskRepo,
	entries repository.TimeEntryRepo,
	exports repository.ExportLogRepo,
	upgradeURL string,
) PlanGate {
	return &planGate{
		plans:       plans,
		memberships: memberships,
		boards:      boards,
		tasks:       tasks,
		entries:     entries,
		exports:     exports,
		upgradeURL:  upgradeURL,
	}
}

// CurrentPlan resolves the workspace's plan: active subscription first,
// then the workspace's inline plan key, then the free plan. A nil result
// means no plan row exists anywhere, which reads as fully unlimited.
func (g *planGate) CurrentPlan(ctx context.Context, workspace *domain.Workspace) (*domain.Plan, error) {
	sub, err := g.plans.GetSubscription(ctx, workspace.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	keys := make([]string, 0, 3)
	if sub != nil {
		keys = append(keys, sub.PlanKey)
	}
	if workspace.Plan != "" {
		keys = append(keys, workspace.Plan)
	}
	keys = append(keys, domain.DefaultPlanKey)

	for _, key := range keys {
		plan, err := g.plans.GetByKey(ctx, key)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		return plan, nil
	}
	return nil, nil
}

func (g *planGate) Limits(ctx context.Context, workspace *domain.Workspace) (domain.LimitSet, error) {
	plan, err := g.CurrentPlan(ctx, workspace)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return domain.LimitSet{}, nil
	}
	return g.plans.LimitsForPlan(ctx, plan.ID)
}

func (g *planGate) Usage(ctx context.Context, workspace *domain.Workspace) (Usage, error) {
	var u Usage
	var err error
	if u.Members, err = g.memberships.CountByWorkspace(ctx, workspace.ID); err != nil {
		return u, err
	}
	if u.Boards, err = g.boards.CountByWorkspace(ctx, workspace.ID); err != nil {
		return u, err
	}
	start, end := monthWindow(time.Now().UTC())
	if u.ExportsThisMonth, err = g.exports.CountForWorkspaceBetween(ctx, workspace.ID, start, end); err != nil {
		return u, err
	}
	return u, nil
}

func (g *planGate) AssertCan(ctx context.Context, workspace *domain.Workspace, ability domain.Ability, gctx GateContext) error {
	limits, err := g.Limits(ctx, workspace)
	if err != nil {
		return err
	}

	var limitKey string
	var current int
	switch ability {
	case domain.AbilityInviteMember:
		limitKey = domain.LimitMaxMembers
		current, err = g.memberships.CountByWorkspace(ctx, workspace.ID)
	case domain.AbilityCreateBoard:
		limitKey = domain.LimitMaxBoards
		current, err = g.boards.CountByWorkspace(ctx, workspace.ID)
	case domain.AbilityCreateTask:
		limitKey = domain.LimitMaxTasksPerBoard
		current, err = g.tasks.CountByBoard(ctx, gctx.BoardID)
	case domain.AbilityExport:
		limitKey = domain.LimitMaxExportsPerMonth
		start, end := monthWindow(time.Now().UTC())
		current, err = g.exports.CountForWorkspaceBetween(ctx, workspace.ID, start, end)
	case domain.AbilityStartTimer:
		limitKey = domain.LimitActiveTimersPerUser
		current, err = g.entries.CountRunningByUserInWorkspace(ctx, workspace.ID, gctx.UserID)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	limit, bounded := limits.Value(limitKey)
	if !bounded {
		// Concurrent timers default to one per user, but only when the
		// plan is silent. A row with a nil value is an explicit grant of
		// unlimited timers and is honored like any other unlimited key.
		if ability != domain.AbilityStartTimer || limits.Has(limitKey) {
			return nil
		}
		limit = domain.DefaultActiveTimersPerUser
	}

	if current < limit {
		return nil
	}
	return &LimitExceededError{
		LimitKey:     limitKey,
		LimitValue:   limit,
		CurrentValue: current,
		UpgradeURL:   g.upgradeURL,
	}
}

// monthWindow returns the half-open calendar-month window containing t.
func monthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}
