// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"fmt"
)

// Op is the kind of change an Event reports.
type Op int

const (
	// Created is reported for new files and directories, including paths
	// that arrive by rename or move.
	Created Op = iota + 1
	// Written is reported when a file's contents change.
	Written
	// Removed is reported for deleted paths and for the old path of a rename.
	Removed
)

type (
	// Event is a single filesystem change below the watched root.
	Event struct {
		Op Op
		// Path is the absolute path of the changed entry.
		Path string
		// Rel is Path relative to the watched root, in slash form.
		Rel string
		// IsDir is true when the entry is (or, for Removed, was) a directory.
		IsDir bool
	}

	// Source produces filesystem events. Events may be called once; the
	// returned channel is closed when ctx is done or the source fails.
	Source interface {
		Events(ctx context.Context) (<-chan Event, error)
	}
)

// String returns the lowercase op name.
func (o Op) String() string {
	switch o {
	case Created:
		return "created"
	case Written:
		return "written"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

func (e Event) String() string {
	return e.Op.String() + " " + e.Rel
}
