package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/repository"
	"github.com/google/uuid"
)

type reportService struct {
	workspaces repository.WorkspaceRepo
	boards     repository.BoardRepo
	entries    repository.TimeEntryRepo
	exports    repository.ExportLogRepo
	access     AccessService
	gate       PlanGate
	observer   UseCaseObserver
}

func NewReportService(
	workspaces repository.WorkspaceRepo,
	boards repository.BoardRepo,
	entries repository.TimeEntryRepo,
	exports repository.ExportLogRepo,
	access AccessService,
	gate PlanGate,
	observers ...UseCaseObserver,
) ReportService {
	return &reportService{
		workspaces: workspaces,
		boards:     boards,
		entries:    entries,
		exports:    exports,
		access:     access,
		gate:       gate,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *reportService) Export(ctx context.Context, actorID, boardID string, start, end time.Time) ([]ReportRow, error) {
	startedAt := time.Now()
	rows, err := s.export(ctx, actorID, boardID, start, end)
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "report_export",
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    map[string]any{"actor_id": actorID, "board_id": boardID},
		StartedAt: startedAt,
	})
	return rows, err
}

func (s *reportService) export(ctx context.Context, actorID, boardID string, start, end time.Time) ([]ReportRow, error) {
	if end.Before(start) {
		return nil, NewValidationError("end", "must not be before start")
	}

	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RoleOf(ctx, actorID, board.WorkspaceID); err != nil {
		return nil, err
	}
	workspace, err := s.workspaces.GetByID(ctx, board.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.AssertCan(ctx, workspace, domain.AbilityExport, GateContext{}); err != nil {
		return nil, err
	}

	// Whole-day range: the start day from midnight, the end day inclusive.
	rangeStart := startOfDay(start)
	rangeEnd := domain.EndOfDay(end)

	entries, err := s.entries.ListFinishedForBoard(ctx, boardID, actorID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	rows := make([]ReportRow, 0, len(entries))
	for _, item := range entries {
		entry := item.Entry
		if entry.EndedAt == nil {
			continue
		}
		effectiveStart := entry.StartedAt
		if effectiveStart.Before(rangeStart) {
			effectiveStart = rangeStart
		}
		effectiveEnd := *entry.EndedAt
		if effectiveEnd.After(rangeEnd) {
			effectiveEnd = rangeEnd
		}
		if !effectiveStart.Before(effectiveEnd) {
			continue
		}

		seconds := effectiveEnd.Sub(effectiveStart).Seconds()
		status := item.ColumnName
		if status == "" {
			status = "Backlog"
		}
		rows = append(rows, ReportRow{
			TaskTitle: item.TaskTitle,
			Status:    titleCase(status),
			Day:       entry.StartedAt.Format("02/01/2006"),
			ClockIn:   entry.StartedAt.Format("15:04:05"),
			ClockOut:  entry.EndedAt.Format("15:04:05"),
			Minutes:   round2(seconds / 60),
			Hours:     round2(seconds / 3600),
		})
	}

	if err := s.exports.Create(ctx, &domain.ExportLog{
		ID:          uuid.New().String(),
		WorkspaceID: board.WorkspaceID,
		UserID:      actorID,
		BoardID:     boardID,
		ExportedAt:  time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	return rows, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
