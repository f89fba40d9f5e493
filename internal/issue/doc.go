// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The issue catalog holds longer Markdown guidance for
// the failures modders hit most often (missing Cobra Tools checkout, missing
// .ovlpaths, a Manifest.xml without a name), rendered with glamour.
package issue
