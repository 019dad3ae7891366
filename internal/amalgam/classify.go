// SPDX-License-Identifier: MPL-2.0

package amalgam

import "regexp"

const (
	// LineOrdinary is content emitted verbatim.
	LineOrdinary LineKind = iota
	// LineLocalInclude is a `#include "path"` directive.
	LineLocalInclude
	// LineOnceDirective is a `#pragma once` directive.
	LineOnceDirective
)

var (
	localIncludePattern = regexp.MustCompile(`^\s*#\s*include\s*"([^">]+)"`)
	oncePattern         = regexp.MustCompile(`^\s*#\s*pragma\s*once\b`)
)

type (
	// LineKind tags the result of classifying a single line.
	LineKind int

	// Classification is the result of Classify. Target is only set for
	// LineLocalInclude.
	Classification struct {
		Kind   LineKind
		Target string
	}
)

// String returns a short name for the kind.
func (k LineKind) String() string {
	switch k {
	case LineOrdinary:
		return "ordinary"
	case LineLocalInclude:
		return "local-include"
	case LineOnceDirective:
		return "once"
	default:
		return "unknown"
	}
}

// MatchLocalInclude reports the quoted path of a local include directive.
// The path is returned exactly as written. Angle-bracket includes and
// unterminated quotes do not match.
func MatchLocalInclude(line string) (string, bool) {
	m := localIncludePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// MatchOnceDirective reports whether line starts with a `#pragma once`
// directive. Anything following the directive is ignored.
func MatchOnceDirective(line string) bool {
	return oncePattern.MatchString(line)
}

// Classify determines how the resolver should treat line. Local includes take
// precedence over once-directives.
func Classify(line string) Classification {
	if target, ok := MatchLocalInclude(line); ok {
		return Classification{Kind: LineLocalInclude, Target: target}
	}
	if MatchOnceDirective(line) {
		return Classification{Kind: LineOnceDirective}
	}
	return Classification{Kind: LineOrdinary}
}
