// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/protrack/modkit/internal/issue"
	"github.com/protrack/modkit/pkg/uipkg"

	"github.com/spf13/cobra"
)

// newUIPkgCommand creates the `modkit uipkg` command tree.
func newUIPkgCommand(app *App) *cobra.Command {
	uipkgCmd := &cobra.Command{
		Use:   "uipkg",
		Short: "Create and inspect " + uipkg.Extension + " UI packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	uipkgCmd.AddCommand(newUIPkgPackCommand(app))

	uipkgCmd.AddCommand(&cobra.Command{
		Use:   "extract <package> <dir>",
		Short: "Write every file of a UI package below dir",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := uipkg.Open(args[0])
			if err != nil {
				return app.fail(cmd, uipkgError("open UI package", args[0], err))
			}
			if err := pkg.ExtractAll(args[1]); err != nil {
				return app.fail(cmd, uipkgError("extract UI package", args[1], err))
			}
			fmt.Fprintf(app.stdout, "%s extracted %d files to %s\n", successIcon, len(pkg.Items), CmdStyle.Render(args[1]))
			return nil
		},
	})

	uipkgCmd.AddCommand(&cobra.Command{
		Use:   "list <package>",
		Short: "List the files of a UI package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := uipkg.Open(args[0])
			if err != nil {
				return app.fail(cmd, uipkgError("open UI package", args[0], err))
			}
			fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("basis"), pkg.Basis)
			fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("game"), pkg.Game)
			for _, item := range pkg.Items {
				fmt.Fprintf(app.stdout, "  %s %s\n", item.Name, SubtitleStyle.Render(fmt.Sprintf("(%d bytes)", len(item.Content))))
			}
			return nil
		},
	})

	return uipkgCmd
}

func newUIPkgPackCommand(app *App) *cobra.Command {
	var basis, game string

	cmd := &cobra.Command{
		Use:   "pack <dir> <output>",
		Short: "Bundle every file below dir into a UI package",
		Long: `Bundle every file below dir into a UI package.

The basis names the folder the package is mounted at inside the game,
relative to the mod root (for example MyMod/Main/UI). It defaults to the
slash form of dir.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, err)
			}
			if basis == "" {
				basis = filepath.ToSlash(filepath.Clean(args[0]))
			}
			if game == "" {
				game = cfg.Build.Game
			}

			w := uipkg.NewWriter(basis, args[1], uipkg.WithGame(game))
			if err := w.ImportAll(args[0]); err != nil {
				return app.fail(cmd, uipkgError("read UI folder", args[0], err))
			}
			if err := w.Close(); err != nil {
				return app.fail(cmd, uipkgError("write UI package", args[1], err))
			}
			fmt.Fprintf(app.stdout, "%s %s %s\n", successIcon, CmdStyle.Render(w.Path()),
				SubtitleStyle.Render(fmt.Sprintf("(%d files)", w.Len())))
			return nil
		},
	}

	cmd.Flags().StringVar(&basis, "basis", "", "mount folder recorded in the package")
	cmd.Flags().StringVar(&game, "game", "", "game name recorded in the package (default from build.game)")

	return cmd
}

func uipkgError(op, resource string, err error) error {
	return issue.NewErrorContext().
		WithOperation(op).
		WithResource(resource).
		Wrap(err).
		BuildError()
}
