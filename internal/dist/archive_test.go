// SPDX-License-Identifier: MPL-2.0

package dist

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		if f.Method != zip.Deflate {
			t.Errorf("entry %s method = %d, want deflate", f.Name, f.Method)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestBuildArchive_ExactEntries(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "Manifest.xml"), "<Manifest>\n  <Name> MyMod </Name>\n</Manifest>")
	writeFile(t, filepath.Join(src, "readme.txt"), "read me")
	writeFile(t, filepath.Join(src, "data.ovl"), "ovl bytes")

	out := filepath.Join(t.TempDir(), "MyMod.zip")
	result, err := BuildArchive(src, out)
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}

	want := []string{"MyMod/Manifest.xml", "MyMod/readme.txt", "MyMod/data.ovl"}
	if !slices.Equal(result.Entries, want) {
		t.Errorf("entries = %v, want %v", result.Entries, want)
	}
	if result.Name != "MyMod" {
		t.Errorf("name = %q", result.Name)
	}

	got := readEntries(t, out)
	if len(got) != len(want) {
		t.Fatalf("zip has %d entries, want %d: %v", len(got), len(want), got)
	}
	if got["MyMod/data.ovl"] != "ovl bytes" || got["MyMod/readme.txt"] != "read me" {
		t.Errorf("unexpected contents: %v", got)
	}
}

func TestBuildArchive_Filtering(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "Manifest.xml"), "<Manifest><Name>Pack</Name></Manifest>")
	writeFile(t, filepath.Join(src, "LICENSE"), "mit")
	writeFile(t, filepath.Join(src, "README.md"), "# pack")
	writeFile(t, filepath.Join(src, "notes.txt"), "skip")
	writeFile(t, filepath.Join(src, "Main", "Test.ovl"), "a")
	writeFile(t, filepath.Join(src, "Main", "Test.ovs"), "b")
	writeFile(t, filepath.Join(src, "Main", "Sub", "x.aux"), "c")
	writeFile(t, filepath.Join(src, "Main", "config.ini"), "d")
	writeFile(t, filepath.Join(src, "Main", "UPPER.OVL"), "case-sensitive")
	writeFile(t, filepath.Join(src, "Main", "Test", "index.html"), "skip")
	writeFile(t, filepath.Join(src, "Nested", "readme.txt"), "not top-level")

	out := filepath.Join(t.TempDir(), "pack.zip")
	result, err := BuildArchive(src, out)
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}

	want := []string{
		"Pack/Manifest.xml",
		"Pack/LICENSE",
		"Pack/README.md",
		"Pack/Main/Sub/x.aux",
		"Pack/Main/Test.ovl",
		"Pack/Main/Test.ovs",
		"Pack/Main/config.ini",
	}
	if !slices.Equal(result.Entries, want) {
		t.Errorf("entries = %v\nwant      %v", result.Entries, want)
	}
}

func TestBuildArchive_DuplicatesAreKept(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "Manifest.xml"), "<Manifest><Name>Dup</Name></Manifest>")
	writeFile(t, filepath.Join(src, "readme.ini"), "both rules")

	result, err := BuildArchive(src, filepath.Join(t.TempDir(), "dup.zip"))
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}
	want := []string{"Dup/Manifest.xml", "Dup/readme.ini", "Dup/readme.ini"}
	if !slices.Equal(result.Entries, want) {
		t.Errorf("entries = %v, want %v", result.Entries, want)
	}
}

func TestBuildArchive_PreservesModTime(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "Manifest.xml"), "<Manifest><Name>T</Name></Manifest>")
	ovl := filepath.Join(src, "a.ovl")
	writeFile(t, ovl, "x")
	mtime := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	if err := os.Chtimes(ovl, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "t.zip")
	if _, err := BuildArchive(src, out); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == "T/a.ovl" && !f.Modified.Equal(mtime) {
			t.Errorf("modified = %v, want %v", f.Modified, mtime)
		}
	}
}

func TestBuildArchive_CustomExtensions(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "Manifest.xml"), "<Manifest><Name>C</Name></Manifest>")
	writeFile(t, filepath.Join(src, "a.ovl"), "x")
	writeFile(t, filepath.Join(src, "ui.ppuipkg"), "y")

	result, err := New([]string{".ppuipkg"}).Build(src, filepath.Join(t.TempDir(), "c.zip"))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(result.Entries, []string{"C/Manifest.xml", "C/ui.ppuipkg"}) {
		t.Errorf("entries = %v", result.Entries)
	}
}

func TestBuildArchive_OutputInsideSource(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "Manifest.xml"), "<Manifest><Name>Self</Name></Manifest>")
	writeFile(t, filepath.Join(src, "a.ovl"), "x")

	result, err := New([]string{".ovl", ".zip"}).Build(src, filepath.Join(src, "out.zip"))
	if err != nil {
		t.Fatal(err)
	}
	if slices.Contains(result.Entries, "Self/out.zip") {
		t.Error("archive must not contain itself")
	}
}

func TestBuildArchive_ManifestErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		manifest string
		wantIs   error
	}{
		{"no manifest", "", os.ErrNotExist},
		{"missing name", "<Manifest><Version>1</Version></Manifest>", ErrMissingName},
		{"blank name", "<Manifest><Name>   </Name></Manifest>", ErrMissingName},
		{"malformed xml", "<Manifest><Name>x</Manifest>", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := t.TempDir()
			if tt.manifest != "" {
				writeFile(t, filepath.Join(src, "Manifest.xml"), tt.manifest)
			}
			writeFile(t, filepath.Join(src, "a.ovl"), "x")

			out := filepath.Join(t.TempDir(), "out.zip")
			_, err := BuildArchive(src, out)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want %v", err, tt.wantIs)
			}
			if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
				t.Errorf("output file should not exist, stat err = %v", statErr)
			}
		})
	}
}

func TestBuildArchive_RemovesPartialOutput(t *testing.T) {
	t.Parallel()
	if os.Getuid() == 0 {
		t.Skip("root can read unreadable files")
	}

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "Manifest.xml"), "<Manifest><Name>P</Name></Manifest>")
	locked := filepath.Join(src, "locked.ovl")
	writeFile(t, locked, "secret")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	out := filepath.Join(t.TempDir(), "p.zip")
	if _, err := BuildArchive(src, out); err == nil {
		t.Fatal("expected error for unreadable file")
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial archive should be removed, stat err = %v", err)
	}
}

func TestReadManifest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "Manifest.xml")
	writeFile(t, path, `<?xml version="1.0"?><ModManifest><Name>ProTrack</Name><Nested><Name>Other</Name></Nested></ModManifest>`)

	m, err := ReadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "ProTrack" {
		t.Errorf("Name = %q, want ProTrack", m.Name)
	}
}
