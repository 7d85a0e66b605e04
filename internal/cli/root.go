// Package cli wires the command-line entrypoints: the HTTP server, the
// schema migrator and the plan seeder.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/classferreiracode/track-my-task/internal/db"
	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/notify"
	"github.com/classferreiracode/track-my-task/internal/repository"
	"github.com/classferreiracode/track-my-task/internal/server"
	"github.com/classferreiracode/track-my-task/internal/service"
)

// App carries the process-level configuration resolved in main.
type App struct {
	DBPath     string
	Addr       string
	UpgradeURL string
	Logger     *slog.Logger
}

// NewRootCmd creates the top-level command and registers all subcommands
// against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "trackmytask",
		Short: "Multi-tenant task and time tracking server",
	}

	root.PersistentFlags().StringVar(&app.DBPath, "db", app.DBPath, "path to the sqlite database file")

	root.AddCommand(
		newServeCmd(app),
		newMigrateCmd(app),
		newSeedPlansCmd(app),
	)

	return root
}

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.OpenDB(app.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer database.Close()

			srv := buildServer(app, database)
			httpServer := &http.Server{
				Addr:    app.Addr,
				Handler: srv.Engine(),
			}

			go func() {
				app.Logger.Info("starting server", slog.String("addr", httpServer.Addr))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					app.Logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutting down server: %w", err)
			}
			app.Logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&app.Addr, "addr", app.Addr, "HTTP listen address")
	return cmd
}

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.OpenDB(app.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer database.Close()
			app.Logger.Info("schema up to date", slog.String("db", app.DBPath))
			return nil
		},
	}
}

// planSeed mirrors the shipped plan tiers. A nil value means unlimited.
var planSeed = []struct {
	Key, Name, Description string
	Limits                 map[string]*int
}{
	{Key: "free", Name: "Free", Description: "For small teams getting started", Limits: map[string]*int{
		domain.LimitMaxMembers:          intPtr(3),
		domain.LimitMaxBoards:           intPtr(3),
		domain.LimitMaxTasksPerBoard:    nil,
		domain.LimitMaxExportsPerMonth:  intPtr(1),
		domain.LimitActiveTimersPerUser: intPtr(1),
	}},
	{Key: "pro", Name: "Pro", Description: "For growing teams", Limits: map[string]*int{
		domain.LimitMaxMembers:          intPtr(10),
		domain.LimitMaxBoards:           intPtr(10),
		domain.LimitMaxTasksPerBoard:    intPtr(200),
		domain.LimitMaxExportsPerMonth:  intPtr(50),
		domain.LimitActiveTimersPerUser: intPtr(3),
	}},
	{Key: "business", Name: "Business", Description: "For large organizations", Limits: map[string]*int{
		domain.LimitMaxMembers:          intPtr(50),
		domain.LimitMaxBoards:           intPtr(50),
		domain.LimitMaxTasksPerBoard:    intPtr(1000),
		domain.LimitMaxExportsPerMonth:  intPtr(500),
		domain.LimitActiveTimersPerUser: intPtr(10),
	}},
}

func newSeedPlansCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-plans",
		Short: "Create the built-in plans and their limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.OpenDB(app.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer database.Close()

			plans := repository.NewSQLitePlanRepo(database)
			ctx := cmd.Context()
			for _, seed := range planSeed {
				plan, err := plans.EnsurePlan(ctx, seed.Key, seed.Name, seed.Description)
				if err != nil {
					return fmt.Errorf("seeding plan %s: %w", seed.Key, err)
				}
				for key, value := range seed.Limits {
					if err := plans.UpsertLimit(ctx, plan.ID, key, value); err != nil {
						return fmt.Errorf("seeding limit %s/%s: %w", seed.Key, key, err)
					}
				}
				app.Logger.Info("plan seeded", slog.String("key", seed.Key))
			}
			return nil
		},
	}
}

func buildServer(app *App, database *sql.DB) *server.Server {
	users := repository.NewSQLiteUserRepo(database)
	workspaces := repository.NewSQLiteWorkspaceRepo(database)
	memberships := repository.NewSQLiteMembershipRepo(database)
	invitations := repository.NewSQLiteInvitationRepo(database)
	boards := repository.NewSQLiteBoardRepo(database)
	columns := repository.NewSQLiteColumnRepo(database)
	tasks := repository.NewSQLiteTaskRepo(database)
	entries := repository.NewSQLiteTimeEntryRepo(database)
	labels := repository.NewSQLiteLabelRepo(database)
	comments := repository.NewSQLiteCommentRepo(database)
	activities := repository.NewSQLiteActivityRepo(database)
	plans := repository.NewSQLitePlanRepo(database)
	exports := repository.NewSQLiteExportLogRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)
	notifier := notify.NewLogNotifier(app.Logger)
	broadcaster := notify.NewLogBroadcaster(app.Logger)
	observer := service.NewSlogUseCaseObserver(app.Logger)

	access := service.NewAccessService(memberships, tasks, boards)
	gate := service.NewPlanGate(plans, memberships, boards, tasks, entries, exports, app.UpgradeURL)
	dispatcher := service.NewDispatcher(activities, notifier, broadcaster, app.Logger)

	return server.New(server.Services{
		Workspaces:  service.NewWorkspaceService(uow, users, workspaces, memberships, access, notifier, observer),
		Invitations: service.NewInvitationService(uow, users, workspaces, memberships, invitations, access, gate, notifier),
		Boards:      service.NewBoardService(workspaces, boards, columns, access, gate),
		Tasks:       service.NewTaskService(uow, users, workspaces, memberships, boards, columns, tasks, entries, access, gate, dispatcher, observer),
		Orders:      service.NewOrderService(uow, users, boards, columns, tasks, access, dispatcher, observer),
		Comments:    service.NewCommentService(uow, memberships, tasks, comments, activities, access, dispatcher),
		Labels:      service.NewLabelService(labels),
		Reports:     service.NewReportService(workspaces, boards, entries, exports, access, gate, observer),
		Access:      access,
	}, app.Logger)
}

func intPtr(v int) *int { return &v }
