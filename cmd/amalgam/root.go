// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for amalgam.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"amalgam-cli/internal/amalgam"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by the root command and watch.
type rootFlags struct {
	configPath     string
	verbose        bool
	input          string
	output         string
	missingInclude string
	detectCycles   bool
	maxDepth       int
	searchPaths    []string
}

// NewRootCommand builds the amalgam command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "amalgam",
		Short: "Flatten a C/C++ header tree into a single file",
		Long: TitleStyle.Render("amalgam") + SubtitleStyle.Render(" - flatten a header tree into a single file") + `

amalgam reads a root file, replaces every local ` + CmdStyle.Render(`#include "path"`) + ` line
with the contents of the named file (recursively) and writes the result to
one output file. Each inlined file is framed by a begin and an end banner.
Files marked with ` + CmdStyle.Render("#pragma once") + ` are inlined only once per run.

Include paths are resolved against the current working directory.

` + SubtitleStyle.Render("Examples:") + `
  amalgam                           Masterfile.hpp -> ArgonMaster.hpp
  amalgam -i src/all.hpp -o dist/all.hpp
  amalgam --missing-include=error   Fail on includes that cannot be opened
  amalgam watch                     Re-run whenever a header changes
  amalgam config show               Show current configuration`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAmalgamate(cmd, app, flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.configPath, "config", "", "config file (default is $HOME/.config/amalgam/config.cue)")
	pf.StringVarP(&flags.input, "input", "i", amalgam.DefaultInput, "root file to amalgamate")
	pf.StringVarP(&flags.output, "output", "o", amalgam.DefaultOutput, "file to write the flattened result to")
	pf.StringVar(&flags.missingInclude, "missing-include", string(amalgam.MissingEmpty), "what to do with includes that cannot be opened (empty|error)")
	pf.BoolVar(&flags.detectCycles, "detect-cycles", false, "fail when a file includes itself while being expanded")
	pf.IntVar(&flags.maxDepth, "max-depth", 0, "maximum include nesting depth (0 = unlimited)")
	pf.StringArrayVarP(&flags.searchPaths, "search-path", "I", nil, "directory to try when an include is not found (repeatable)")

	rootCmd.AddCommand(newWatchCommand(app, flags))
	rootCmd.AddCommand(newBannerCommand(app))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func runAmalgamate(cmd *cobra.Command, app *App, flags *rootFlags) error {
	cfg, err := app.loadSettings(cmd, flags)
	if err != nil {
		return app.fail(cmd, err, flags.verbose, "auto")
	}

	logger := app.newLogger(cfg.UI.Verbose)
	stats, err := amalgam.Run(cmd.Context(), runOptions(cfg, logger))
	if err != nil {
		return app.fail(cmd, err, cfg.UI.Verbose, cfg.UI.ColorScheme)
	}

	printSummary(app, cfg.Output, stats)
	return nil
}

func printSummary(app *App, output string, stats amalgam.Stats) {
	fmt.Fprintf(app.stdout, "%s Wrote %s (%d files, %d lines)\n",
		SuccessStyle.Render("✓"), CmdStyle.Render(output), stats.Expansions, stats.Lines)
	if stats.MissingIncludes > 0 {
		fmt.Fprintf(app.stdout, "%s %d include(s) could not be opened and were left empty\n",
			WarningStyle.Render("!"), stats.MissingIncludes)
	}
}
