// SPDX-License-Identifier: MPL-2.0

package devserver

import "sync/atomic"

// ReloadFlag records that the mirrored tree changed since the last poll.
// The zero value is ready to use.
type ReloadFlag struct {
	pending atomic.Bool
}

// Set marks a reload as pending.
func (f *ReloadFlag) Set() { f.pending.Store(true) }

// Take reports whether a reload was pending and clears it. Exactly one
// caller observes each Set.
func (f *ReloadFlag) Take() bool { return f.pending.Swap(false) }

// Pending reports the flag without clearing it.
func (f *ReloadFlag) Pending() bool { return f.pending.Load() }
