// SPDX-License-Identifier: MPL-2.0

package amalgam

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// MissingEmpty expands an include that cannot be opened as an empty file
	// (begin and end banner only) and logs a warning.
	MissingEmpty MissingPolicy = "empty"
	// MissingError aborts the run when an include cannot be opened.
	MissingError MissingPolicy = "error"

	// utf8BOM is stripped from the first line of every expanded file.
	utf8BOM = "\xEF\xBB\xBF"
)

type (
	// MissingPolicy selects what happens when an include target cannot be opened.
	MissingPolicy string

	// Opener opens an include target for reading.
	Opener func(path string) (io.ReadCloser, error)

	// ResolverOptions configures a Resolver. The zero value reproduces the
	// plain amalgamation behavior: include targets are opened relative to the
	// working directory, missing targets expand to nothing, and neither cycles
	// nor depth are checked.
	ResolverOptions struct {
		// Logger receives debug traces and missing-include warnings.
		// nil discards all output.
		Logger *log.Logger
		// Open opens include targets. nil uses os.Open.
		Open Opener
		// MissingInclude is the policy for targets that cannot be opened.
		// The zero value behaves as MissingEmpty.
		MissingInclude MissingPolicy
		// DetectCycles fails the run when a file is included while it is still
		// being expanded, instead of recursing until resources run out.
		DetectCycles bool
		// MaxDepth limits include nesting; the root file is depth 0. Zero or
		// negative disables the limit.
		MaxDepth int
		// SearchPaths are directories tried, in order, when a target cannot be
		// opened as written. Banners and the once-set keep the raw target.
		SearchPaths []string
	}

	// Stats summarizes a single run of a Resolver.
	Stats struct {
		// Expansions counts files expanded, including the root and repeats.
		Expansions int
		// OnceSkips counts include lines dropped because the target was once-protected.
		OnceSkips int
		// Lines counts ordinary lines emitted.
		Lines int
		// MissingIncludes counts targets expanded as empty because they could not be opened.
		MissingIncludes int
	}

	// Resolver expands include directives recursively into a single output.
	// A Resolver carries the once-set of one run and is not safe for
	// concurrent use.
	Resolver struct {
		opts   ResolverOptions
		open   Opener
		logger *log.Logger
		seen   *SeenOnceSet
		active []string
		stats  Stats
	}
)

// IsValid reports whether the policy is recognized. The zero value is valid.
func (p MissingPolicy) IsValid() (bool, []error) {
	switch p {
	case "", MissingEmpty, MissingError:
		return true, nil
	default:
		return false, []error{&InvalidMissingPolicyError{Value: p}}
	}
}

// NewResolver creates a Resolver with an empty once-set.
func NewResolver(opts ResolverOptions) *Resolver {
	open := opts.Open
	if open == nil {
		open = openFile
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{
		opts:   opts,
		open:   open,
		logger: logger,
		seen:   NewSeenOnceSet(),
	}
}

// Seen returns the once-set shared by all expansions of this resolver.
func (r *Resolver) Seen() *SeenOnceSet {
	return r.seen
}

// Stats returns the counters accumulated so far.
func (r *Resolver) Stats() Stats {
	return r.stats
}

// Expand writes the expansion of in, identified by inputPath, to w. Nested
// includes are opened with the resolver's Opener and expanded into the same
// writer, depth first, in the order their directives appear.
func (r *Resolver) Expand(w io.Writer, inputPath string, in io.Reader) error {
	return r.expand(w, inputPath, in, 0)
}

func (r *Resolver) expand(w io.Writer, path string, in io.Reader, depth int) error {
	r.stats.Expansions++
	r.active = append(r.active, path)
	defer func() { r.active = r.active[:len(r.active)-1] }()

	r.logger.Debug("expanding", "path", path, "depth", depth)
	if err := writeBanner(w, path); err != nil {
		return err
	}

	br := bufio.NewReader(in)
	first := true
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read %s: %w", path, readErr)
		}
		if readErr != nil && line == "" {
			break
		}
		line = strings.TrimSuffix(line, "\n")
		if first {
			first = false
			line = strings.TrimPrefix(line, utf8BOM)
		}

		if err := r.handleLine(w, path, line, depth); err != nil {
			return err
		}
		if readErr != nil {
			break
		}
	}

	r.logger.Debug("expanded", "path", path, "depth", depth)
	return writeBanner(w, EndLabel(path))
}

func (r *Resolver) handleLine(w io.Writer, path, line string, depth int) error {
	c := Classify(line)
	switch c.Kind {
	case LineLocalInclude:
		if r.seen.Contains(c.Target) {
			r.stats.OnceSkips++
			r.logger.Debug("skipping once-protected include", "path", c.Target, "includer", path)
			return nil
		}
		return r.include(w, path, c.Target, depth+1)
	case LineOnceDirective:
		r.logger.Debug("once-protected", "path", path)
		r.seen.Add(path)
		return nil
	default:
		r.stats.Lines++
		_, err := io.WriteString(w, line+"\n")
		return err
	}
}

func (r *Resolver) include(w io.Writer, includer, target string, depth int) error {
	if r.opts.DetectCycles && slices.Contains(r.active, target) {
		return &IncludeCycleError{Chain: append(slices.Clone(r.active), target)}
	}
	if r.opts.MaxDepth > 0 && depth > r.opts.MaxDepth {
		return &MaxDepthError{Path: target, Depth: depth}
	}

	rc, err := r.openInclude(target)
	if err != nil {
		if r.opts.MissingInclude == MissingError {
			return &IncludeOpenError{Path: target, Includer: includer, Err: err}
		}
		r.stats.MissingIncludes++
		r.logger.Warn("include not found, expanding as empty", "path", target, "includer", includer, "err", err)
		return r.expand(w, target, strings.NewReader(""), depth)
	}
	defer rc.Close() //nolint:errcheck // read-only

	return r.expand(w, target, rc, depth)
}

// openInclude opens target as written, then under each search path. The
// error of the first attempt is reported when all attempts fail.
func (r *Resolver) openInclude(target string) (io.ReadCloser, error) {
	rc, firstErr := r.open(target)
	if firstErr == nil {
		return rc, nil
	}
	if filepath.IsAbs(target) {
		return nil, firstErr
	}
	for _, dir := range r.opts.SearchPaths {
		candidate := filepath.Join(dir, target)
		if rc, err := r.open(candidate); err == nil {
			r.logger.Debug("include found on search path", "path", target, "resolved", candidate)
			return rc, nil
		}
	}
	return nil, firstErr
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	// Directories open fine on most platforms but cannot be read as text.
	if info, statErr := f.Stat(); statErr == nil && info.IsDir() {
		f.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("%s: is a directory", path)
	}
	return f, nil
}
