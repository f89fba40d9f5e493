// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// Color schemes accepted by ui.color_scheme.
const (
	ColorSchemeDark  = "dark"
	ColorSchemeLight = "light"
	ColorSchemeNoTTY = "notty"
)

// Defaults applied before any config file or environment variable.
const (
	DefaultPython    = "python"
	DefaultGame      = "Planet Coaster 2"
	DefaultPort      = 8000
	DefaultSourceDir = "UIGameface"
	DefaultDebounce  = 100 * time.Millisecond
	DefaultSettle    = 50 * time.Millisecond
)

type (
	// Config holds the application configuration.
	Config struct {
		Build BuildConfig `json:"build" mapstructure:"build"`
		Dist  DistConfig  `json:"dist" mapstructure:"dist"`
		Dev   DevConfig   `json:"dev" mapstructure:"dev"`
		UI    UIConfig    `json:"ui" mapstructure:"ui"`
	}

	// BuildConfig configures the path-list driver.
	BuildConfig struct {
		// CobraToolsPath is the Cobra Tools checkout holding ovl_tool_cmd.py.
		CobraToolsPath string `json:"cobra_tools_path" mapstructure:"cobra_tools_path"`
		Python         string `json:"python" mapstructure:"python"`
		Game           string `json:"game" mapstructure:"game"`
	}

	// DistConfig configures the distribution packager.
	DistConfig struct {
		Extensions []string `json:"extensions" mapstructure:"extensions"`
	}

	// DevConfig configures the dev sync server.
	DevConfig struct {
		Port      int      `json:"port" mapstructure:"port"`
		SourceDir string   `json:"source_dir" mapstructure:"source_dir"`
		TargetDir string   `json:"target_dir" mapstructure:"target_dir"`
		Debounce  string   `json:"debounce" mapstructure:"debounce"`
		Settle    string   `json:"settle" mapstructure:"settle"`
		Ignore    []string `json:"ignore" mapstructure:"ignore"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		Verbose     bool   `json:"verbose" mapstructure:"verbose"`
		ColorScheme string `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultExtensions lists the file types packed by `modkit dist`.
func DefaultExtensions() []string {
	return []string{".ovl", ".ovs", ".aux", ".ini"}
}

// DefaultTargetDir is the UI test environment folder the dev server mirrors into.
func DefaultTargetDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("UI Test Environment", DefaultSourceDir)
	}
	return filepath.Join(home, "Documents", "Modding", "PC2", "UI Test Environment", DefaultSourceDir)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			Python: DefaultPython,
			Game:   DefaultGame,
		},
		Dist: DistConfig{
			Extensions: DefaultExtensions(),
		},
		Dev: DevConfig{
			Port:      DefaultPort,
			SourceDir: DefaultSourceDir,
			TargetDir: DefaultTargetDir(),
			Debounce:  DefaultDebounce.String(),
			Settle:    DefaultSettle.String(),
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeDark,
		},
	}
}

// DebounceDuration parses dev.debounce.
func (d DevConfig) DebounceDuration() (time.Duration, error) {
	return parseDuration("dev.debounce", d.Debounce, DefaultDebounce)
}

// SettleDuration parses dev.settle.
func (d DevConfig) SettleDuration() (time.Duration, error) {
	return parseDuration("dev.settle", d.Settle, DefaultSettle)
}

// Validate checks constraints the CUE schema does not cover, such as
// environment overrides that bypass it.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return fmt.Errorf("dev.port: %d is out of range [0, 65535]", c.Dev.Port)
	}
	if _, err := c.Dev.DebounceDuration(); err != nil {
		return err
	}
	if _, err := c.Dev.SettleDuration(); err != nil {
		return err
	}
	if !slices.Contains([]string{ColorSchemeDark, ColorSchemeLight, ColorSchemeNoTTY}, c.UI.ColorScheme) {
		return fmt.Errorf("ui.color_scheme: unknown scheme %q", c.UI.ColorScheme)
	}
	if c.Build.Python == "" {
		return fmt.Errorf("build.python: must not be empty")
	}
	return nil
}

func parseDuration(field, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %q", field, raw)
	}
	return d, nil
}
