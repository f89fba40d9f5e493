// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/protrack/modkit/internal/devserver"

	"github.com/spf13/cobra"
)

type serveOptions struct {
	port   int
	source string
	target string
}

// newServeCommand creates the `modkit serve` command.
func newServeCommand(app *App) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Mirror the UI folder and serve it with live reload",
		Long: `Mirror the UI source folder into the test folder and serve the test folder.

Every change under the source folder is copied to the target. HTML pages
served from the target poll /reload-check and reload themselves after a
change was mirrored. Stop the server with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, err)
			}

			debounce, err := cfg.Dev.DebounceDuration()
			if err != nil {
				return app.fail(cmd, err)
			}
			settle, err := cfg.Dev.SettleDuration()
			if err != nil {
				return app.fail(cmd, err)
			}

			serveCfg := devserver.Config{
				SourceDir: cfg.Dev.SourceDir,
				TargetDir: cfg.Dev.TargetDir,
				Port:      cfg.Dev.Port,
				Debounce:  debounce,
				Settle:    settle,
				Ignore:    cfg.Dev.Ignore,
				Logger:    app.logger("serve"),
				OnReady: func(url string) {
					fmt.Fprintf(app.stdout, "%s Serving %s\n", successIcon, CmdStyle.Render(url))
				},
			}
			if cmd.Flags().Changed("port") {
				serveCfg.Port = opts.port
			}
			if opts.source != "" {
				serveCfg.SourceDir = opts.source
			}
			if opts.target != "" {
				serveCfg.TargetDir = opts.target
			}

			if err := app.Serve(cmd.Context(), serveCfg); err != nil {
				return app.fail(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", devserver.DefaultPort, "HTTP port to serve the target folder on")
	cmd.Flags().StringVar(&opts.source, "source", "", "UI source folder to watch (default from dev.source_dir)")
	cmd.Flags().StringVar(&opts.target, "target", "", "folder to mirror into and serve (default from dev.target_dir)")

	return cmd
}
