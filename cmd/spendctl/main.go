// Command spendctl administers a spendwise installation.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"spendwise/internal/backend"
	"spendwise/internal/cli"
	"spendwise/internal/config"
	"spendwise/internal/log"
	"spendwise/internal/sheets"
)

// app carries what the commands need so tests can swap the backend.
type app struct {
	backendName string
	dbPath      string
	logLevel    string

	stdin  io.Reader
	now    func() time.Time
	open   func(ctx context.Context, a *app) (*backend.BackendResult, *config.Config, error)
	mirror sheets.Mirror
}

func newApp() *app {
	return &app{stdin: os.Stdin, now: time.Now, open: openBackend}
}

func (a *app) logger() *log.Logger {
	return log.New(log.Config{Level: log.ParseLevel(a.logLevel), Output: os.Stderr})
}

// openBackend loads the environment configuration, applies flag overrides
// and opens the selected backend.
func openBackend(ctx context.Context, a *app) (*backend.BackendResult, *config.Config, error) {
	cli.LoadEnvFile()
	cfg := config.Load()
	if a.backendName != "" {
		cfg.DataBackend = a.backendName
	}
	if a.dbPath != "" {
		cfg.SQLiteDBPath = a.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := cli.RequireSharedBackend(cfg); err != nil {
		return nil, nil, err
	}
	res, err := cli.OpenBackend(ctx, a.logger(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return res, cfg, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "spendctl",
		Short:         "Administer a spendwise installation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.backendName, "backend", "",
		fmt.Sprintf("data backend %v (default: DATA_BACKEND)", backend.GetBackendTypeStrings()))
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (default: SQLITE_DB_PATH)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(addUserCmd(a))
	root.AddCommand(statsCmd(a))
	root.AddCommand(migrateCmd(a))
	root.AddCommand(importCmd(a))
	root.AddCommand(resyncCmd(a))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(newApp()).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
