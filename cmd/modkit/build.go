// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/protrack/modkit/internal/build"
	"github.com/protrack/modkit/internal/config"
	"github.com/protrack/modkit/internal/fsops"
	"github.com/protrack/modkit/internal/issue"

	"github.com/spf13/cobra"
)

type buildOptions struct {
	dryRun bool
	python string
	game   string
}

// newBuildCommand creates the `modkit build` command.
func newBuildCommand(app *App) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build <cobra_tools_path> <manifest_path>",
		Short: "Package every OVL directory listed in .ovlpaths",
		Long: `Package every OVL directory listed in the .ovlpaths file next to the manifest.

Directories that contain a .uipackages file first get one .ppuipkg archive
per listed UI folder. Each directory is then handed to the Cobra Tools
packager (ovl_tool_cmd.py). Pass "-" as the Cobra Tools path to use
build.cobra_tools_path from the configuration or $COBRA_TOOLS_PATH.

The command exits with status 1 if any directory failed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, app, opts, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "build UI packages but only print the packager commands")
	cmd.Flags().StringVar(&opts.python, "python", "", "python interpreter (default from build.python)")
	cmd.Flags().StringVar(&opts.game, "game", "", "game name passed to the packager (default from build.game)")

	return cmd
}

func runBuild(cmd *cobra.Command, app *App, opts buildOptions, toolsPath, manifestPath string) error {
	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		return app.fail(cmd, err)
	}

	if toolsPath == "-" {
		toolsPath = cfg.Build.CobraToolsPath
		if toolsPath == "" {
			return app.fail(cmd, issue.NewErrorContext().
				WithOperation("resolve Cobra Tools path").
				WithIssue(issue.CobraToolsNotFoundId).
				WithSuggestion("Set "+config.CobraToolsEnv+" or build.cobra_tools_path in the config file").
				BuildError())
		}
	}

	if !fsops.IsFile(manifestPath) {
		return app.fail(cmd, issue.NewErrorContext().
			WithOperation("read manifest").
			WithResource(manifestPath).
			WithIssue(issue.ManifestNotFoundId).
			WithSuggestion("Pass the path of the mod's Manifest.xml").
			BuildError())
	}

	python := firstNonEmpty(opts.python, cfg.Build.Python)
	game := firstNonEmpty(opts.game, cfg.Build.Game)

	driverOpts := []build.Option{
		build.WithLogger(app.logger("build")),
		build.WithPython(python),
		build.WithGame(game),
		build.WithDryRun(opts.dryRun),
	}
	if app.Packagers != nil {
		driverOpts = append(driverOpts, build.WithPackagerFactory(app.Packagers))
	}

	report, err := build.NewDriver(driverOpts...).Process(cmd.Context(), toolsPath, manifestPath)
	if err != nil {
		return app.fail(cmd, err)
	}

	for _, entry := range report.Entries {
		icon := successIcon
		if entry.Failed() {
			icon = errorIcon
		}
		fmt.Fprintf(app.stdout, "%s %s\n", icon, CmdStyle.Render(entry.Path))
	}
	summary := fmt.Sprintf("%s, %s",
		SuccessStyle.Render(fmt.Sprintf("%d succeeded", report.Succeeded)),
		ErrorStyle.Render(fmt.Sprintf("%d failed", report.Failed)))
	fmt.Fprintln(app.stdout, TitleStyle.Render("Build: ")+summary)

	if !report.Success() {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
