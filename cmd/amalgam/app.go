// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"amalgam-cli/internal/amalgam"
	"amalgam-cli/internal/config"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and reads
	// configuration and output writers through it.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// loadSettings loads the configuration file and applies the command-line
// flags the user set explicitly on top of it.
func (a *App) loadSettings(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg, err := a.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.Input = flags.input
	}
	if changed("output") {
		cfg.Output = flags.output
	}
	if changed("missing-include") {
		cfg.MissingInclude = amalgam.MissingPolicy(flags.missingInclude)
	}
	if changed("detect-cycles") {
		cfg.DetectCycles = flags.detectCycles
	}
	if changed("max-depth") {
		cfg.MaxDepth = flags.maxDepth
	}
	if changed("search-path") {
		cfg.SearchPaths = flags.searchPaths
	}
	if changed("verbose") {
		cfg.UI.Verbose = flags.verbose
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, errs[0]
	}
	return cfg, nil
}

// newLogger returns the process logger: prefixed, on stderr, at debug level
// in verbose mode.
func (a *App) newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// runOptions converts loaded settings into the options of one amalgamation.
func runOptions(cfg *config.Config, logger *log.Logger) amalgam.RunOptions {
	ro := cfg.ResolverOptions()
	ro.Logger = logger
	return amalgam.RunOptions{
		ResolverOptions: ro,
		Input:           cfg.Input,
		Output:          cfg.Output,
	}
}
