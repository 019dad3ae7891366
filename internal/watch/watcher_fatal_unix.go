// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// fatalWatchError reports whether err leaves the inotify backend unusable and,
// if so, what the operator can do about it. Large source trees hit these limits
// first because every directory holds a watch.
func fatalWatchError(err error) (hint string, fatal bool) {
	switch {
	case errors.Is(err, syscall.ENOSPC):
		return "raise fs.inotify.max_user_watches or narrow the watched tree", true
	case errors.Is(err, syscall.EMFILE):
		return "raise the per-process open file limit (ulimit -n)", true
	case errors.Is(err, syscall.ENFILE):
		return "the system-wide file table is full", true
	}
	return "", false
}
