// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/protrack/modkit/internal/testutil"
	"github.com/protrack/modkit/pkg/uipkg"
)

func TestUIPkgCommand_PackListExtract(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "UI")
	testutil.WriteTree(t, dir, map[string]string{
		"index.html":    "<html></html>",
		"css/style.css": "body{}",
	})
	out := filepath.Join(t.TempDir(), "UI"+uipkg.Extension)

	res := runCLI(t, Dependencies{}, "uipkg", "pack", "--basis", "MyMod/Main/UI", dir, out)
	if res.err != nil {
		t.Fatalf("pack error = %v\nstderr: %s", res.err, res.stderr)
	}

	pkg, err := uipkg.Open(out)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if pkg.Basis != "MyMod/Main/UI" || pkg.Game != uipkg.DefaultGame || len(pkg.Items) != 2 {
		t.Errorf("package = basis %q game %q items %d", pkg.Basis, pkg.Game, len(pkg.Items))
	}

	res = runCLI(t, Dependencies{}, "uipkg", "list", out)
	if res.err != nil {
		t.Fatalf("list error = %v", res.err)
	}
	for _, want := range []string{"MyMod/Main/UI", "css/style.css", "index.html", "(6 bytes)"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("list output missing %q:\n%s", want, res.stdout)
		}
	}

	extracted := t.TempDir()
	res = runCLI(t, Dependencies{}, "uipkg", "extract", out, extracted)
	if res.err != nil {
		t.Fatalf("extract error = %v", res.err)
	}
	got, err := os.ReadFile(filepath.Join(extracted, "css", "style.css"))
	if err != nil || string(got) != "body{}" {
		t.Errorf("extracted css = %q, %v", got, err)
	}
}

func TestUIPkgCommand_OpenMissing(t *testing.T) {
	t.Parallel()

	res := runCLI(t, Dependencies{}, "uipkg", "list", filepath.Join(t.TempDir(), "none"+uipkg.Extension))
	if code := exitCode(t, res.err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(res.stderr, "open UI package") {
		t.Errorf("stderr = %q", res.stderr)
	}
}
