// SPDX-License-Identifier: MPL-2.0

package amalgam

import (
	"maps"
	"slices"
)

// SeenOnceSet records the files that declared `#pragma once` during a run.
// Keys are paths as written in include directives (or the root name); they
// are never canonicalized, so "a.h" and "./a.h" are distinct entries.
// Entries are never removed.
type SeenOnceSet struct {
	paths map[string]struct{}
}

// NewSeenOnceSet returns an empty set.
func NewSeenOnceSet() *SeenOnceSet {
	return &SeenOnceSet{paths: make(map[string]struct{})}
}

// Add marks path as once-protected.
func (s *SeenOnceSet) Add(path string) {
	s.paths[path] = struct{}{}
}

// Contains reports whether path has been marked.
func (s *SeenOnceSet) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// Len returns the number of marked paths.
func (s *SeenOnceSet) Len() int {
	return len(s.paths)
}

// Paths returns the marked paths in lexical order.
func (s *SeenOnceSet) Paths() []string {
	return slices.Sorted(maps.Keys(s.paths))
}
