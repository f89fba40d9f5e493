// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// Win32 error codes that leave ReadDirectoryChangesW unusable.
const (
	errnoTooManyOpenFiles = syscall.Errno(4)
	errnoInvalidHandle    = syscall.Errno(6)
	errnoNotEnoughMemory  = syscall.Errno(8)
)

// exhaustionHint reports whether err leaves the watcher unusable, with the
// remedy to show the user.
func exhaustionHint(err error) (string, bool) {
	switch {
	case errors.Is(err, errnoTooManyOpenFiles):
		return "handle limit reached, close other programs watching the folder", true
	case errors.Is(err, errnoInvalidHandle):
		return "the watched folder was deleted or its drive was unmounted", true
	case errors.Is(err, errnoNotEnoughMemory):
		return "not enough memory for the change notification buffer", true
	}
	return "", false
}
