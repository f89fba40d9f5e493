// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/protrack/modkit/internal/build"
	"github.com/protrack/modkit/internal/config"
	"github.com/protrack/modkit/internal/devserver"
	"github.com/protrack/modkit/internal/issue"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type (
	// App wires CLI services and shared dependencies. Every Cobra command
	// handler receives an App and delegates through its fields.
	App struct {
		Config    ConfigProvider
		Packagers build.PackagerFactory
		Serve     ServeFunc
		stdout    io.Writer
		stderr    io.Writer

		// set by persistent flags on the root command
		verbose    bool
		configPath string

		// glamour style for rendered issues, from ui.color_scheme
		colorScheme string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		// Packagers overrides the subprocess packager used by build.
		Packagers build.PackagerFactory
		Serve     ServeFunc
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// ServeFunc runs the dev sync server until ctx is done.
	ServeFunc func(ctx context.Context, cfg devserver.Config) error
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Serve == nil {
		deps.Serve = devserver.Run
	}

	return &App{
		Config:    deps.Config,
		Packagers: deps.Packagers,
		Serve:     deps.Serve,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,

		colorScheme: config.ColorSchemeDark,
	}, nil
}

// loadConfig loads configuration honoring --config. It applies ui.verbose
// when --verbose was not given and ui.color_scheme to rendered issues.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose {
		a.verbose = true
	}
	if cfg.UI.ColorScheme != "" {
		a.colorScheme = cfg.UI.ColorScheme
	}
	return cfg, nil
}

// logger returns a component logger on stderr, at debug level in verbose mode.
func (a *App) logger(prefix string) *log.Logger {
	l := log.NewWithOptions(a.stderr, log.Options{Prefix: prefix})
	if a.verbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// fail renders err on stderr and converts it to an exit code 1. In verbose
// mode a linked catalog issue is rendered as markdown after the error.
func (a *App) fail(cmd *cobra.Command, err error) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+issue.Format(err, a.verbose))
	if a.verbose {
		if iss, ok := issue.IssueOf(err); ok {
			if rendered, renderErr := iss.Render(a.colorScheme); renderErr == nil {
				fmt.Fprint(a.stderr, rendered)
			}
		}
	}
	return &ExitError{Code: 1}
}
