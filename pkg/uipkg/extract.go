// SPDX-License-Identifier: MPL-2.0

package uipkg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extract writes the single item to dir/<item name>.
func Extract(item Item, dir string) error {
	target, err := safeJoin(dir, item.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", item.Name, err)
	}
	if err := os.WriteFile(target, item.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", item.Name, err)
	}
	return nil
}

// ExtractAll writes every item below dir.
func (p Package) ExtractAll(dir string) error {
	for _, item := range p.Items {
		if err := Extract(item, dir); err != nil {
			return err
		}
	}
	return nil
}

// safeJoin resolves name below dir and rejects names that would escape it.
func safeJoin(dir, name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("%w: invalid item name %q", ErrMalformed, name)
	}
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: item name %q escapes the extraction directory", ErrMalformed, name)
	}
	return target, nil
}
