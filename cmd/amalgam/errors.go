// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"amalgam-cli/internal/amalgam"
	"amalgam-cli/internal/config"
	"amalgam-cli/internal/issue"

	"github.com/spf13/cobra"
)

// issueForError picks the catalog entry that explains err, or 0 if none does.
// An issue recorded on an ActionableError wins over the error kind below it.
func issueForError(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue
	}

	switch {
	case errors.Is(err, amalgam.ErrIncludeOpen):
		return issue.IncludeNotFoundId
	case errors.Is(err, amalgam.ErrIncludeCycle):
		return issue.IncludeCycleId
	case errors.Is(err, amalgam.ErrMaxDepth):
		return issue.IncludeDepthExceededId
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId
	default:
		return 0
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderError writes err to w. In verbose mode the matching issue catalog
// entry is rendered after it with the given glamour style.
func renderError(w io.Writer, err error, verbose bool, style config.ColorScheme) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
	if !verbose {
		return
	}

	entry := issue.Get(issueForError(err))
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(string(style))
	if renderErr != nil {
		fmt.Fprintf(w, "%s failed to render guidance: %v\n", WarningStyle.Render("!"), renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}

// fail renders err once and turns it into exit code 1.
func (a *App) fail(cmd *cobra.Command, err error, verbose bool, style config.ColorScheme) error {
	renderError(a.stderr, err, verbose, style)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: 1, Err: err}
}
