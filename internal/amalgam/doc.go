// SPDX-License-Identifier: MPL-2.0

// Package amalgam flattens a tree of C/C++ style source files into a single
// file.
//
// Starting from a root file, every line is classified as a local include
// (`#include "path"`), a once-directive (`#pragma once`) or ordinary content.
// Local includes are expanded in place, depth first, with each expanded file
// wrapped in begin/end banner comments. Files that declare `#pragma once` are
// expanded at most once per run; other files are re-expanded every time they
// are included.
//
// Include targets are opened relative to the process working directory, not
// the including file. Angle-bracket includes, macros and conditional
// compilation are passed through untouched.
package amalgam
