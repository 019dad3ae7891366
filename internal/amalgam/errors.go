// SPDX-License-Identifier: MPL-2.0

package amalgam

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncludeOpen is the sentinel error wrapped by IncludeOpenError.
	ErrIncludeOpen = errors.New("cannot open include")
	// ErrIncludeCycle is the sentinel error wrapped by IncludeCycleError.
	ErrIncludeCycle = errors.New("include cycle detected")
	// ErrMaxDepth is the sentinel error wrapped by MaxDepthError.
	ErrMaxDepth = errors.New("include depth limit exceeded")
	// ErrInvalidMissingPolicy is the sentinel error wrapped by InvalidMissingPolicyError.
	ErrInvalidMissingPolicy = errors.New("invalid missing include policy")
)

type (
	// IncludeOpenError is returned when an include target cannot be opened and
	// the missing include policy is MissingError. It wraps ErrIncludeOpen for
	// errors.Is() compatibility; the underlying open error is available through
	// errors.As.
	IncludeOpenError struct {
		// Path is the include target exactly as written in the directive.
		Path string
		// Includer is the logical name of the file containing the directive.
		Includer string
		// Err is the error returned by the first open attempt.
		Err error
	}

	// IncludeCycleError is returned when cycle detection is enabled and a file
	// is included while it is still being expanded.
	IncludeCycleError struct {
		// Chain lists the active expansions from the root to the re-entered file.
		Chain []string
	}

	// MaxDepthError is returned when the nesting of includes exceeds the
	// configured limit.
	MaxDepthError struct {
		Path  string
		Depth int
	}

	// InvalidMissingPolicyError is returned when a MissingPolicy value is not recognized.
	InvalidMissingPolicyError struct {
		Value MissingPolicy
	}
)

// Error implements the error interface for IncludeOpenError.
func (e *IncludeOpenError) Error() string {
	return fmt.Sprintf("%s %q (included from %s): %v", ErrIncludeOpen, e.Path, e.Includer, e.Err)
}

// Unwrap returns both the sentinel and the underlying open error.
func (e *IncludeOpenError) Unwrap() []error { return []error{ErrIncludeOpen, e.Err} }

// Error implements the error interface for IncludeCycleError.
func (e *IncludeCycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrIncludeCycle, strings.Join(e.Chain, " -> "))
}

// Unwrap returns ErrIncludeCycle for errors.Is() compatibility.
func (e *IncludeCycleError) Unwrap() error { return ErrIncludeCycle }

// Error implements the error interface for MaxDepthError.
func (e *MaxDepthError) Error() string {
	return fmt.Sprintf("%s: %q would be expanded at depth %d", ErrMaxDepth, e.Path, e.Depth)
}

// Unwrap returns ErrMaxDepth for errors.Is() compatibility.
func (e *MaxDepthError) Unwrap() error { return ErrMaxDepth }

// Error implements the error interface for InvalidMissingPolicyError.
func (e *InvalidMissingPolicyError) Error() string {
	return fmt.Sprintf("invalid missing include policy %q (valid: %s, %s)", e.Value, MissingEmpty, MissingError)
}

// Unwrap returns ErrInvalidMissingPolicy for errors.Is() compatibility.
func (e *InvalidMissingPolicyError) Unwrap() error { return ErrInvalidMissingPolicy }
