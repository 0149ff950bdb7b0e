package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	"youtube-tracker/internal/constants"
	fxmodules "youtube-tracker/internal/fx"
	"youtube-tracker/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "tracker",
		Short:        "Track daily YouTube channel views and publish ranked deltas",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCollect(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Fetch today's view counts, update the store and regenerate the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCollect(cmd.Context())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "report",
		Short: "Regenerate the report from the stored history without fetching",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context())
		},
	})

	return root
}

func runCollect(ctx context.Context) error {
	var pipeline *service.Pipeline
	return withApp(ctx, fx.Populate(&pipeline), func(ctx context.Context) error {
		_, err := pipeline.Run(ctx, time.Now())
		return err
	})
}

func runReport(ctx context.Context) error {
	var reporter *service.Reporter
	return withApp(ctx, fx.Populate(&reporter), func(ctx context.Context) error {
		_, err := reporter.Report(ctx, time.Now())
		return err
	})
}

// withApp starts the fx graph, runs fn once, then stops the graph so lifecycle hooks
// (the archive database) get closed.
func withApp(ctx context.Context, populate fx.Option, fn func(context.Context) error) error {
	app := fx.New(
		fxmodules.Module,
		populate,
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	runCtx, runCancel := context.WithTimeout(ctx, constants.RunTimeout)
	defer runCancel()
	runErr := fn(runCtx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return fmt.Errorf("failed to stop application: %w", err)
	}

	return runErr
}
