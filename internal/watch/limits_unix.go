// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// exhaustionHint reports whether err means the kernel ran out of watch
// resources, with the remedy to show the user. A UI tree with many nested
// folders runs into the inotify watch limit first.
func exhaustionHint(err error) (string, bool) {
	switch {
	case errors.Is(err, syscall.ENOSPC):
		return "inotify watch limit reached, raise fs.inotify.max_user_watches", true
	case errors.Is(err, syscall.EMFILE):
		return "too many open files in this process, raise ulimit -n", true
	case errors.Is(err, syscall.ENFILE):
		return "system file table is full", true
	}
	return "", false
}
