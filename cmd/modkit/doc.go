// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the modkit command line: build, dist, serve, uipkg
// and config, composed around an App that carries injectable services.
package cmd
