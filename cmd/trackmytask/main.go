package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/classferreiracode/track-my-task/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	dbPath := os.Getenv("TRACKMYTASK_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".trackmytask", "trackmytask.db")
	}

	addr := os.Getenv("TRACKMYTASK_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	upgradeURL := os.Getenv("TRACKMYTASK_UPGRADE_URL")
	if upgradeURL == "" {
		upgradeURL = "/billing/upgrade"
	}

	app := &cli.App{
		DBPath:     dbPath,
		Addr:       addr,
		UpgradeURL: upgradeURL,
		Logger:     newLogger(),
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

// newLogger picks a text handler for terminals and JSON for everything
// else, so piped logs stay machine-readable.
func newLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
