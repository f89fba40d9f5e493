// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fixture helpers for tests: mod trees written to
// temp dirs, working directory and home directory switches. Every helper
// fails the test immediately on error.
package testutil
