// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/protrack/modkit/internal/config"
)

// The tests below point the config dir at a temp dir and are not parallel.

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "modkit")
	t.Cleanup(config.OverrideConfigDir(dir))
	return dir
}

func TestConfigPath(t *testing.T) {
	dir := withConfigDir(t)

	res := runCLI(t, Dependencies{}, "config", "path")
	if res.err != nil {
		t.Fatalf("config path error = %v", res.err)
	}
	if got, want := strings.TrimSpace(res.stdout), filepath.Join(dir, "config.cue"); got != want {
		t.Errorf("config path = %q, want %q", got, want)
	}
}

func TestConfigInit(t *testing.T) {
	dir := withConfigDir(t)

	res := runCLI(t, Dependencies{}, "config", "init")
	if res.err != nil {
		t.Fatalf("config init error = %v", res.err)
	}
	if !strings.Contains(res.stdout, "Created configuration") {
		t.Errorf("stdout = %q", res.stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.cue")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	res = runCLI(t, Dependencies{}, "config", "init")
	if res.err != nil {
		t.Fatalf("second config init error = %v", res.err)
	}
	if !strings.Contains(res.stdout, "already exists") {
		t.Errorf("second init stdout = %q", res.stdout)
	}
}

func TestConfigShow(t *testing.T) {
	withConfigDir(t)

	cfg := config.DefaultConfig()
	cfg.Build.CobraToolsPath = "/srv/cobra"
	cfg.Dev.Ignore = []string{"**/*.psd"}

	res := runCLI(t, Dependencies{Config: &staticConfig{cfg: cfg}}, "config", "show")
	if res.err != nil {
		t.Fatalf("config show error = %v", res.err)
	}
	for _, want := range []string{"(using defaults)", "/srv/cobra", ".ovl .ovs .aux .ini", "**/*.psd", "8000"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("config show missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestConfigShow_LoadError(t *testing.T) {
	withConfigDir(t)

	provider := config.ProviderFunc(func(context.Context, config.LoadOptions) (*config.Config, error) {
		return nil, errors.New("config.cue:3:1: expected '}'")
	})
	res := runCLI(t, Dependencies{Config: provider}, "config", "show")
	if code := exitCode(t, res.err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(res.stderr, "expected '}'") {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestConfigDump(t *testing.T) {
	withConfigDir(t)

	cfg := config.DefaultConfig()
	cfg.Build.Python = "python3.12"

	res := runCLI(t, Dependencies{Config: &staticConfig{cfg: cfg}}, "config", "dump")
	if res.err != nil {
		t.Fatalf("config dump error = %v", res.err)
	}
	if res.stdout != config.GenerateCUE(cfg) {
		t.Errorf("dump output differs from GenerateCUE:\n%s", res.stdout)
	}
}
