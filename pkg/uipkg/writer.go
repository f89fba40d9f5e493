// SPDX-License-Identifier: MPL-2.0

package uipkg

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/protrack/modkit/internal/fsops"
)

type (
	// Writer accumulates items in memory and serializes them to a single
	// container file on Close. Close re-serializes the full item list every
	// time it is called; an existing output file is never patched.
	Writer struct {
		basis string
		path  string
		game  string
		items []Item
		index map[string]int
	}

	// Option customizes a Writer.
	Option func(*Writer)
)

// WithGame overrides the game identifier written to the root element.
func WithGame(game string) Option {
	return func(w *Writer) {
		if game != "" {
			w.game = game
		}
	}
}

// NewWriter creates a Writer for a container with the given basis path that
// will be written to outputPath.
func NewWriter(basis, outputPath string, opts ...Option) *Writer {
	w := &Writer{
		basis: basis,
		path:  outputPath,
		game:  DefaultGame,
		index: make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the output file path.
func (w *Writer) Path() string { return w.path }

// Basis returns the basis path recorded in the container.
func (w *Writer) Basis() string { return w.basis }

// Len returns the number of items.
func (w *Writer) Len() int { return len(w.items) }

// Add stores content under name. Backslashes in name become forward
// slashes. An item with the same name is replaced in place.
func (w *Writer) Add(name string, content []byte) {
	name = normalizeName(name)
	if i, ok := w.index[name]; ok {
		w.items[i].Content = content
		return
	}
	w.index[name] = len(w.items)
	w.items = append(w.items, Item{Name: name, Content: content})
}

// AddFile reads the file root/name and adds it under name.
func (w *Writer) AddFile(root, name string) error {
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(normalizeName(name))))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	w.Add(name, content)
	return nil
}

// ImportAll adds every file below root, recursively, named by its path
// relative to root.
func (w *Writer) ImportAll(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 && fsops.IsDir(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return w.AddFile(root, filepath.ToSlash(rel))
	})
}

// Remove deletes the item called name and reports whether it existed.
func (w *Writer) Remove(name string) bool {
	i, ok := w.index[normalizeName(name)]
	if !ok {
		return false
	}
	w.items = append(w.items[:i], w.items[i+1:]...)
	w.reindex()
	return true
}

// Get returns the item called name, or ErrItemNotFound.
func (w *Writer) Get(name string) (Item, error) {
	i, ok := w.index[normalizeName(name)]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, name)
	}
	return w.items[i], nil
}

// Names returns the item names in insertion order.
func (w *Writer) Names() []string {
	names := make([]string, len(w.items))
	for i, item := range w.items {
		names[i] = item.Name
	}
	return names
}

// Items returns a copy of the item list in insertion order.
func (w *Writer) Items() []Item {
	out := make([]Item, len(w.items))
	copy(out, w.items)
	return out
}

// Package returns the in-memory container.
func (w *Writer) Package() Package {
	return Package{Basis: w.basis, Game: w.game, Items: w.Items()}
}

// Close serializes all items to the output path.
func (w *Writer) Close() error {
	var buf bytes.Buffer
	if err := Encode(&buf, w.Package()); err != nil {
		return err
	}
	if err := fsops.AtomicWrite(w.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	return nil
}

func (w *Writer) reindex() {
	clear(w.index)
	for i, item := range w.items {
		w.index[item.Name] = i
	}
}
