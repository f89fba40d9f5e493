// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/protrack/modkit/internal/dist"
	"github.com/protrack/modkit/internal/issue"

	"github.com/spf13/cobra"
)

const distUsageMessage = "First argument needs to be the folder to be packaged! The second argument needs to be the name of the outputted file!"

// newDistCommand creates the `modkit dist` command.
func newDistCommand(app *App) *cobra.Command {
	var extensions []string

	cmd := &cobra.Command{
		Use:   "dist <folder> <output_file>",
		Short: "Zip a mod folder for distribution",
		Long: `Zip a mod folder for distribution.

The archive root is the <Name> from the folder's Manifest.xml. It holds the
manifest, top-level readme and license files, and every file in the tree
whose extension is in dist.extensions (.ovl .ovs .aux .ini by default).`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				fmt.Fprintln(app.stderr, distUsageMessage)
				cmd.SilenceUsage = true
				cmd.SilenceErrors = true
				return &ExitError{Code: -1}
			}
			return cobra.MaximumNArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, err)
			}
			if !cmd.Flags().Changed("ext") {
				extensions = cfg.Dist.Extensions
			}

			logger := app.logger("dist")
			result, err := dist.New(extensions).Build(args[0], args[1])
			if err != nil {
				return app.fail(cmd, distError(args[0], err))
			}

			for _, entry := range result.Entries {
				logger.Debug("added", "entry", entry)
			}
			logger.Infof("ZIP file created successfully: %s", result.Output)
			fmt.Fprintf(app.stdout, "%s %s %s\n", successIcon, CmdStyle.Render(result.Name),
				SubtitleStyle.Render(fmt.Sprintf("(%d files)", len(result.Entries))))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "file extensions to pack (default from dist.extensions)")

	return cmd
}

func distError(sourceDir string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("create distribution archive").
		WithResource(sourceDir).
		Wrap(err)

	switch {
	case errors.Is(err, dist.ErrMissingName):
		ctx = ctx.WithIssue(issue.ModNameMissingId).
			WithSuggestion("Add a non-empty <Name> element to " + dist.ManifestFileName)
	case errors.Is(err, os.ErrNotExist):
		ctx = ctx.WithIssue(issue.ManifestNotFoundId).
			WithSuggestion("Point modkit dist at the folder that contains " + dist.ManifestFileName)
	}
	return ctx.BuildError()
}
