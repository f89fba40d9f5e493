// SPDX-License-Identifier: MPL-2.0

// Package devserver mirrors a UI source tree into a test folder and serves
// it over HTTP with a polling live-reload script injected into HTML pages.
//
// The mirror copies every created or modified file to the same relative
// path under the target and removes deleted paths; each applied change sets
// the ReloadFlag. Pages poll GET /reload-check, which reports and clears the
// flag, and reload themselves when it was set.
package devserver
