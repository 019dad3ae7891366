// SPDX-License-Identifier: MPL-2.0

package amalgam

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"amalgam-cli/internal/issue"
)

const (
	// DefaultInput is the root file amalgamated when none is configured.
	DefaultInput = "Masterfile.hpp"
	// DefaultOutput is the flattened file written when none is configured.
	DefaultOutput = "ArgonMaster.hpp"
)

// RunOptions configures Run.
type RunOptions struct {
	ResolverOptions

	// Input is the root file. It is also the logical name used for its
	// banners and once-set key.
	Input string
	// Output is the file the flattened result is written to. It is replaced
	// only after the whole expansion succeeded.
	Output string
}

// Run amalgamates opts.Input into opts.Output with a fresh once-set.
//
// The result is written to a temporary file next to the output and renamed
// into place, so a failed run leaves any previous output untouched.
func Run(ctx context.Context, opts RunOptions) (Stats, error) {
	select {
	case <-ctx.Done():
		return Stats{}, fmt.Errorf("amalgamate canceled: %w", ctx.Err())
	default:
	}

	if valid, errs := opts.MissingInclude.IsValid(); !valid {
		return Stats{}, errs[0]
	}
	input := opts.Input
	if input == "" {
		input = DefaultInput
	}
	output := opts.Output
	if output == "" {
		output = DefaultOutput
	}

	in, err := os.Open(input)
	if err != nil {
		return Stats{}, issue.NewErrorContext().
			WithOperation("open root file").
			WithResource(input).
			WithSuggestion("Run amalgam from the directory containing the root file").
			WithSuggestion("Pass the root file explicitly with --input").
			WithIssue(issue.RootFileNotFoundId).
			Wrap(err).
			BuildError()
	}
	defer in.Close() //nolint:errcheck // read-only

	tmp, err := os.CreateTemp(filepath.Dir(output), "."+filepath.Base(output)+".*.tmp")
	if err != nil {
		return Stats{}, outputError(err, "create output file", output)
	}
	tmpPath := tmp.Name()
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()        //nolint:errcheck // discarded
		os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		return Stats{}, outputError(err, "create output file", output)
	}

	r := NewResolver(opts.ResolverOptions)
	bw := bufio.NewWriter(tmp)
	if err := r.Expand(bw, input, in); err != nil {
		tmp.Close()        //nolint:errcheck // discarded
		os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		return r.Stats(), issue.WrapWithContext(err, "amalgamate", input)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()        //nolint:errcheck // discarded
		os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		return r.Stats(), outputError(err, "write output file", output)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		return r.Stats(), outputError(err, "write output file", output)
	}
	if err := os.Rename(tmpPath, output); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		return r.Stats(), outputError(err, "replace output file", output)
	}

	return r.Stats(), nil
}

func outputError(err error, operation, output string) error {
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(output).
		WithSuggestion("Check that the output directory exists and is writable").
		WithIssue(issue.OutputWriteFailedId).
		Wrap(err).
		BuildError()
}
