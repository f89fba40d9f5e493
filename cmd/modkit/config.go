// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/protrack/modkit/internal/config"
	"github.com/protrack/modkit/internal/fsops"
	"github.com/protrack/modkit/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `modkit config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage modkit configuration",
		Long: `Manage modkit configuration.

Configuration is stored in:
  - Linux: ~/.config/modkit/config.cue
  - macOS: ~/Library/Application Support/modkit/config.cue
  - Windows: %APPDATA%\modkit\config.cue

A modkit.cue file in the working directory is used when no user config
exists. Environment variables MODKIT_<SECTION>_<KEY> and COBRA_TOOLS_PATH
override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				if !app.verbose {
					rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render(app.colorScheme)
					fmt.Fprint(app.stderr, rendered)
				}
				return app.fail(cmd, err)
			}
			showConfig(app.stdout, app.configPath, cfg)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig()
			if err != nil {
				return app.fail(cmd, err)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("Configuration already exists:"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created configuration:"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigFilePath()
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, explicitPath string, cfg *config.Config) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	source := SubtitleStyle.Render("(using defaults)")
	if explicitPath != "" {
		source = explicitPath
	} else if path, err := config.ConfigFilePath(); err == nil && fsops.IsFile(path) {
		source = path
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), source)

	value := func(v any) string { return valueStyle.Render(fmt.Sprintf("%v", v)) }
	orNone := func(s string) string {
		if s == "" {
			return SubtitleStyle.Render("(not set)")
		}
		return valueStyle.Render(s)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("build"))
	fmt.Fprintf(w, "  cobra_tools_path: %s\n", orNone(cfg.Build.CobraToolsPath))
	fmt.Fprintf(w, "  python: %s\n", value(cfg.Build.Python))
	fmt.Fprintf(w, "  game: %s\n", value(cfg.Build.Game))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("dist"))
	fmt.Fprintf(w, "  extensions: %s\n", value(strings.Join(cfg.Dist.Extensions, " ")))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("dev"))
	fmt.Fprintf(w, "  port: %s\n", value(cfg.Dev.Port))
	fmt.Fprintf(w, "  source_dir: %s\n", value(cfg.Dev.SourceDir))
	fmt.Fprintf(w, "  target_dir: %s\n", value(cfg.Dev.TargetDir))
	fmt.Fprintf(w, "  debounce: %s\n", value(cfg.Dev.Debounce))
	fmt.Fprintf(w, "  settle: %s\n", value(cfg.Dev.Settle))
	if len(cfg.Dev.Ignore) == 0 {
		fmt.Fprintf(w, "  ignore: %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		fmt.Fprintf(w, "  ignore:\n")
		for _, pattern := range cfg.Dev.Ignore {
			fmt.Fprintf(w, "    - %s\n", valueStyle.Render(pattern))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", value(cfg.UI.ColorScheme))
	fmt.Fprintf(w, "  verbose: %s\n", value(cfg.UI.Verbose))
}
