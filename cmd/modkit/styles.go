// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Palette for terminal output. Colors are picked for dark backgrounds and
// degrade gracefully when the terminal has no color support.
var (
	colorAccent = lipgloss.Color("#7C3AED")
	colorDim    = lipgloss.Color("#6B7280")
	colorOK     = lipgloss.Color("#10B981")
	colorFail   = lipgloss.Color("#EF4444")
	colorWarn   = lipgloss.Color("#F59E0B")
	colorPath   = lipgloss.Color("#3B82F6")
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	SubtitleStyle = lipgloss.NewStyle().Foreground(colorDim)
	SuccessStyle  = lipgloss.NewStyle().Foreground(colorOK)
	ErrorStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorFail)
	WarningStyle  = lipgloss.NewStyle().Foreground(colorWarn)
	// CmdStyle marks paths, keys and command names.
	CmdStyle = lipgloss.NewStyle().Foreground(colorPath)

	successIcon = SuccessStyle.Render("✓")
	errorIcon   = ErrorStyle.Render("✗")
)
