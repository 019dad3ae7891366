// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"amalgam-cli/internal/amalgam"
	"amalgam-cli/internal/watch"

	"github.com/spf13/cobra"
)

func newWatchCommand(app *App, flags *rootFlags) *cobra.Command {
	var clearScreen bool

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the amalgamation whenever a source file changes",
		Long: `Run the amalgamation once, then watch the working directory and run it
again after files matching watch.patterns change. Each run starts with an
empty once-set. Failed runs are reported and watching continues.

Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, app, flags, clearScreen)
		},
	}
	watchCmd.Flags().BoolVar(&clearScreen, "clear", false, "clear the terminal before each re-run")

	return watchCmd
}

func runWatch(cmd *cobra.Command, app *App, flags *rootFlags, clearScreen bool) error {
	cfg, err := app.loadSettings(cmd, flags)
	if err != nil {
		return app.fail(cmd, err, flags.verbose, "auto")
	}
	logger := app.newLogger(cfg.UI.Verbose)
	opts := runOptions(cfg, logger)

	rerun := func(ctx context.Context) error {
		stats, runErr := amalgam.Run(ctx, opts)
		if runErr != nil {
			return runErr
		}
		printSummary(app, cfg.Output, stats)
		return nil
	}

	if runErr := rerun(cmd.Context()); runErr != nil {
		renderError(app.stderr, runErr, cfg.UI.Verbose, cfg.UI.ColorScheme)
	}

	w, err := watch.New(watch.Config{
		Patterns:    cfg.Watch.Patterns,
		Ignore:      cfg.Watch.Ignore,
		Exclude:     []string{cfg.Output},
		Debounce:    cfg.Watch.Debounce,
		ClearScreen: clearScreen,
		Logger:      logger,
		Stdout:      app.stdout,
		OnChange: func(ctx context.Context, changed []string) error {
			logger.Info("change detected, re-running", "files", len(changed), "first", changed[0])
			return rerun(ctx)
		},
	})
	if err != nil {
		return app.fail(cmd, fmt.Errorf("failed to start watcher: %w", err), cfg.UI.Verbose, cfg.UI.ColorScheme)
	}

	fmt.Fprintf(app.stdout, "\n%s Watching %s for changes (Ctrl+C to stop)...\n\n",
		CmdStyle.Render("→"), w.BaseDir())
	if err := w.Run(cmd.Context()); err != nil {
		return app.fail(cmd, err, cfg.UI.Verbose, cfg.UI.ColorScheme)
	}
	return nil
}
