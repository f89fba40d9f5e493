// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the modkit command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modkit",
		Short: "Build, package and preview Planet Coaster 2 mods",
		Long: TitleStyle.Render("modkit") + SubtitleStyle.Render(" - Build, package and preview Planet Coaster 2 mods") + `

modkit drives the Cobra Tools OVL packager over a mod tree, bundles UI
folders into .ppuipkg archives, zips a finished mod for distribution and
serves a live-reloading preview of the UI while you edit it.

` + SubtitleStyle.Render("Examples:") + `
  modkit build ~/cobra-tools MyMod/Manifest.xml  Package every listed OVL directory
  modkit dist MyMod MyMod.zip                  Zip the mod rooted at its manifest name
  modkit serve                                 Mirror UIGameface and serve it on :8000
  modkit uipkg list Main.ppuipkg               Show what a UI package contains
  modkit config show                           Show current configuration`,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $HOME/.config/modkit/config.cue)")

	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newDistCommand(app))
	rootCmd.AddCommand(newServeCommand(app))
	rootCmd.AddCommand(newUIPkgCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the root command and runs it. It is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
