// SPDX-License-Identifier: MPL-2.0

// Package listfile parses the line-oriented path lists used by the build
// pipeline (".ovlpaths" next to a mod manifest and ".uipackages" inside an
// OVL directory).
//
// Each non-blank line that does not start with "#" names a directory
// relative to the list's base directory.
package listfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// OVLPathsName is the manifest list file that sits next to Manifest.xml.
	OVLPathsName = ".ovlpaths"
	// UIPackagesName is the per-directory list of UI package folders.
	UIPackagesName = ".uipackages"

	commentPrefix = "#"
)

// Entry is one path line of a list file.
type Entry struct {
	// Line is the 1-based line number in the list file.
	Line int
	// Raw is the trimmed line exactly as written.
	Raw string
	// Value is Raw with leading "./" segments removed and cleaned.
	Value string
}

// Resolve joins the entry onto base.
func (e Entry) Resolve(base string) string {
	return filepath.Join(base, filepath.FromSlash(e.Value))
}

// Parse reads entries from r, skipping blank and comment lines.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if text == "" || strings.HasPrefix(text, commentPrefix) {
			continue
		}
		entries = append(entries, Entry{Line: line, Raw: text, Value: clean(text)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadFile parses the list file at path.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return entries, nil
}

// clean strips leading "./" (or ".\") segments and normalizes separators to
// forward slashes.
func clean(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	for strings.HasPrefix(p, "./") {
		p = strings.TrimLeft(strings.TrimPrefix(p, "./"), "/")
	}
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
}
