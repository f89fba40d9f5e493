// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/protrack/modkit/internal/issue"
	"github.com/protrack/modkit/internal/testutil"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Build.Python != "python" {
		t.Errorf("Build.Python = %q, want python", cfg.Build.Python)
	}
	if cfg.Build.Game != "Planet Coaster 2" {
		t.Errorf("Build.Game = %q", cfg.Build.Game)
	}
	if cfg.Build.CobraToolsPath != "" {
		t.Errorf("Build.CobraToolsPath = %q, want empty", cfg.Build.CobraToolsPath)
	}
	if !slices.Equal(cfg.Dist.Extensions, []string{".ovl", ".ovs", ".aux", ".ini"}) {
		t.Errorf("Dist.Extensions = %v", cfg.Dist.Extensions)
	}
	if cfg.Dev.Port != 8000 {
		t.Errorf("Dev.Port = %d, want 8000", cfg.Dev.Port)
	}
	if cfg.Dev.SourceDir != "UIGameface" {
		t.Errorf("Dev.SourceDir = %q", cfg.Dev.SourceDir)
	}
	if filepath.Base(cfg.Dev.TargetDir) != "UIGameface" {
		t.Errorf("Dev.TargetDir = %q should end in UIGameface", cfg.Dev.TargetDir)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark || cfg.UI.Verbose {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDevConfig_Durations(t *testing.T) {
	t.Parallel()

	d := DevConfig{}
	if got, err := d.DebounceDuration(); err != nil || got != DefaultDebounce {
		t.Errorf("empty debounce = %v, %v", got, err)
	}
	if got, err := d.SettleDuration(); err != nil || got != DefaultSettle {
		t.Errorf("empty settle = %v, %v", got, err)
	}

	d = DevConfig{Debounce: "250ms", Settle: "1s"}
	if got, _ := d.DebounceDuration(); got != 250*time.Millisecond {
		t.Errorf("debounce = %v", got)
	}
	if got, _ := d.SettleDuration(); got != time.Second {
		t.Errorf("settle = %v", got)
	}

	for _, raw := range []string{"soon", "-5ms"} {
		if _, err := (DevConfig{Debounce: raw}).DebounceDuration(); err == nil {
			t.Errorf("debounce %q: expected error", raw)
		}
	}
}

func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(OverrideConfigDir(dir))

	got, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}

	path, err := ConfigFilePath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("ConfigFilePath() = %q", path)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, path, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.Dev.Port != DefaultPort || cfg.Build.Python != DefaultPython {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
build: cobra_tools_path: "/opt/cobra-tools"
dist: extensions: [".ovl", ".ovs"]
dev: {
	port: 9000
	debounce: "200ms"
	ignore: ["**/*.psd"]
}
`)

	cfg, resolved, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Build.CobraToolsPath != "/opt/cobra-tools" {
		t.Errorf("CobraToolsPath = %q", cfg.Build.CobraToolsPath)
	}
	if cfg.Build.Python != DefaultPython {
		t.Errorf("unset python should keep default, got %q", cfg.Build.Python)
	}
	if !slices.Equal(cfg.Dist.Extensions, []string{".ovl", ".ovs"}) {
		t.Errorf("Extensions = %v", cfg.Dist.Extensions)
	}
	if cfg.Dev.Port != 9000 {
		t.Errorf("Port = %d", cfg.Dev.Port)
	}
	if d, _ := cfg.Dev.DebounceDuration(); d != 200*time.Millisecond {
		t.Errorf("Debounce = %v", d)
	}
	if !slices.Equal(cfg.Dev.Ignore, []string{"**/*.psd"}) {
		t.Errorf("Ignore = %v", cfg.Dev.Ignore)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"port out of range", `dev: port: 70000`, "dev.port"},
		{"extension without dot", `dist: extensions: ["ovl"]`, "dist.extensions"},
		{"unknown field", `colour: "red"`, "colour"},
		{"bad color scheme", `ui: color_scheme: "neon"`, "ui.color_scheme"},
		{"syntax error", `dev: {`, "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, _, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
			if iss, ok := issue.IssueOf(err); !ok || iss.Id() != issue.ConfigLoadFailedId {
				t.Errorf("error should carry ConfigLoadFailedId")
			}
		})
	}
}

func TestLoad_SchemaErrorMessage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `dev: port: 70000`)

	_, _, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if n := strings.Count(msg, path); n != 1 {
		t.Errorf("file path appears %d times in %q, want 1", n, msg)
	}
	if strings.Contains(msg, "#Config") {
		t.Errorf("error %q should not name the schema definition", msg)
	}
	if !strings.Contains(msg, path+": dev.port:") {
		t.Errorf("error %q should read <file>: dev.port: ...", msg)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.cue")
	if err := os.WriteFile(path, []byte(`ui: verbose: true`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.UI.Verbose {
		t.Error("expected ui.verbose from explicit file")
	}

	_, err = NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(dir, "missing.cue")})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("missing explicit file: got %v", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `build: cobra_tools_path: "/from/file"`)

	t.Setenv(CobraToolsEnv, "/from/env")
	t.Setenv("MODKIT_DEV_PORT", "9100")

	cfg, _, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Build.CobraToolsPath != "/from/env" {
		t.Errorf("CobraToolsPath = %q, want /from/env", cfg.Build.CobraToolsPath)
	}
	if cfg.Dev.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Dev.Port)
	}

	t.Setenv("MODKIT_BUILD_COBRA_TOOLS_PATH", "/from/prefixed")
	cfg, _, err = Resolve(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Build.CobraToolsPath != "/from/prefixed" {
		t.Errorf("prefixed variable should win, got %q", cfg.Build.CobraToolsPath)
	}
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("MODKIT_DEV_SETTLE", "later")

	_, _, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "dev.settle") {
		t.Errorf("expected dev.settle validation error, got %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := Resolve(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestGenerateCUE_LoadsBack(t *testing.T) {
	dir := t.TempDir()

	want := DefaultConfig()
	want.Build.CobraToolsPath = `C:\Tools\cobra-tools`
	want.Dev.Ignore = []string{"**/*.bak"}
	writeConfig(t, dir, GenerateCUE(want))

	got, _, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("generated CUE should load: %v", err)
	}
	if got.Build != want.Build {
		t.Errorf("Build = %+v, want %+v", got.Build, want.Build)
	}
	if !slices.Equal(got.Dist.Extensions, want.Dist.Extensions) {
		t.Errorf("Extensions = %v", got.Dist.Extensions)
	}
	if got.Dev.Port != want.Dev.Port || got.Dev.TargetDir != want.Dev.TargetDir {
		t.Errorf("Dev = %+v, want %+v", got.Dev, want.Dev)
	}
	if !slices.Equal(got.Dev.Ignore, want.Dev.Ignore) {
		t.Errorf("Ignore = %v", got.Dev.Ignore)
	}
	if got.UI != want.UI {
		t.Errorf("UI = %+v", got.UI)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Cleanup(OverrideConfigDir(filepath.Join(t.TempDir(), "nested")))

	path, created, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig: %v", err)
	}
	if !created {
		t.Error("first call should create the file")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file missing: %v", err)
	}

	if _, created, err = CreateDefaultConfig(); err != nil || created {
		t.Errorf("second call: created=%v err=%v, want false, nil", created, err)
	}
}

func TestLoad_WorkingDirectoryFile(t *testing.T) {
	wd := t.TempDir()
	testutil.WriteTree(t, wd, map[string]string{
		LocalConfigFileName + "." + ConfigFileExt: `dev: port: 8123`,
	})
	testutil.MustChdir(t, wd)

	cfg, path, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Dev.Port != 8123 {
		t.Errorf("Port = %d, want 8123", cfg.Dev.Port)
	}
	if path != LocalConfigFileName+"."+ConfigFileExt {
		t.Errorf("resolved path = %q", path)
	}
}

func TestDefaultTargetDir_UnderHome(t *testing.T) {
	home := t.TempDir()
	testutil.SetHomeDir(t, home)

	want := filepath.Join(home, "Documents", "Modding", "PC2", "UI Test Environment", "UIGameface")
	if got := DefaultTargetDir(); got != want {
		t.Errorf("DefaultTargetDir() = %q, want %q", got, want)
	}
}
