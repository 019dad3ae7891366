// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Helpers cover the working directory (MustChdir), environment variables
// (MustSetenv) and fixture trees of source files (WriteTree).
package testutil
