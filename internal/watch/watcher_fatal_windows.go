// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// Win32 codes that leave ReadDirectoryChangesW unusable.
const (
	errnoTooManyOpenFiles = syscall.Errno(4)
	errnoInvalidHandle    = syscall.Errno(6)
	errnoNotEnoughMemory  = syscall.Errno(8)
)

// fatalWatchError reports whether err leaves the watcher unusable and, if so,
// what the operator can do about it.
func fatalWatchError(err error) (hint string, fatal bool) {
	switch {
	case errors.Is(err, errnoTooManyOpenFiles):
		return "too many open handles", true
	case errors.Is(err, errnoInvalidHandle):
		return "the watched directory was removed or unmounted", true
	case errors.Is(err, errnoNotEnoughMemory):
		return "not enough memory for the change notification buffer", true
	}
	return "", false
}
