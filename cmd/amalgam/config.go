// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"amalgam-cli/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `amalgam config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage amalgam configuration",
		Long: `Manage amalgam configuration.

Configuration is stored in:
  - Linux: ~/.config/amalgam/config.cue
  - macOS: ~/Library/Application Support/amalgam/config.cue
  - Windows: %APPDATA%\amalgam\config.cue

A config.cue in the working directory is used when the user file is absent.
Settings can be overridden with AMALGAM_* environment variables
(e.g. AMALGAM_OUTPUT) and with command-line flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd, app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return app.fail(cmd, err, flags.verbose, "auto")
			}
			fmt.Fprintf(app.stdout, "%s Configuration file: %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.ConfigFilePath()
			if err != nil {
				return app.fail(cmd, err, flags.verbose, "auto")
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadSettings(cmd, flags)
			if err != nil {
				return app.fail(cmd, err, flags.verbose, "auto")
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App, flags *rootFlags) error {
	cfg, err := app.loadSettings(cmd, flags)
	if err != nil {
		return app.fail(cmd, err, flags.verbose, "auto")
	}

	source, err := config.Resolve(cmd.Context(), config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil || source == "" {
		source = SubtitleStyle.Render("(using defaults)")
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	out := app.stdout
	row := func(indent, key string, value any) {
		fmt.Fprintf(out, "%s%s: %s\n", indent, keyStyle.Render(key), valueStyle.Render(fmt.Sprint(value)))
	}
	list := func(values []string) string {
		if len(values) == 0 {
			return SubtitleStyle.Render("(none)")
		}
		return strings.Join(values, ", ")
	}

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), source)
	fmt.Fprintln(out)

	row("", "input", cfg.Input)
	row("", "output", cfg.Output)
	row("", "missing_include", cfg.MissingInclude)
	row("", "detect_cycles", cfg.DetectCycles)
	row("", "max_depth", cfg.MaxDepth)
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("search_paths"), list(cfg.SearchPaths))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ui"))
	row("  ", "verbose", cfg.UI.Verbose)
	row("  ", "color_scheme", cfg.UI.ColorScheme)

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("watch"))
	row("  ", "debounce", cfg.Watch.Debounce)
	fmt.Fprintf(out, "  %s: %s\n", keyStyle.Render("patterns"), list(cfg.Watch.Patterns))
	fmt.Fprintf(out, "  %s: %s\n", keyStyle.Render("ignore"), list(cfg.Watch.Ignore))

	return nil
}
