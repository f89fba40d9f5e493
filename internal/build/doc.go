// SPDX-License-Identifier: MPL-2.0

// Package build drives the OVL packager over the paths listed in a mod's
// .ovlpaths file, building any UI packages named by per-directory
// .uipackages files first.
package build
