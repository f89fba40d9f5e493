// SPDX-License-Identifier: MPL-2.0

// Package watch reports filesystem changes below a directory tree as a
// stream of Events.
//
// Watcher is the fsnotify-backed Source. Directories are registered
// recursively, directories created later are picked up automatically, and
// the files already inside a newly created or moved-in directory are
// reported as Created. Events are delivered one by one without coalescing.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultBuffer = 64

// defaultIgnores are excluded regardless of Config.Ignore: VCS metadata,
// dependency caches, editor swap files and OS metadata.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
	"**/Thumbs.db",
}

// Watcher is a recursive fsnotify Source.
type Watcher struct {
	fsw     *fsnotify.Watcher
	ignores []string
	baseDir string
	buffer  int
	logger  *log.Logger
	started atomic.Bool

	mu   sync.Mutex
	dirs map[string]struct{}
	err  error
}

var _ Source = (*Watcher)(nil)

// New creates a Watcher and registers every non-ignored directory under
// cfg.BaseDir.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		baseDir = wd
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}
	if info, statErr := os.Stat(absBase); statErr != nil {
		return nil, fmt.Errorf("watch: %w", statErr)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", absBase)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "watch"})
	}

	buffer := cfg.Buffer
	if buffer == 0 {
		buffer = defaultBuffer
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)

	w := &Watcher{
		fsw:     fsw,
		ignores: ignores,
		baseDir: absBase,
		buffer:  buffer,
		logger:  logger,
		dirs:    make(map[string]struct{}),
	}

	if err := w.addTree(absBase, nil); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close after init failure", "err", closeErr)
		}
		return nil, err
	}

	return w, nil
}

// BaseDir returns the absolute watched root.
func (w *Watcher) BaseDir() string { return w.baseDir }

// Events starts delivering events. It must be called exactly once; the
// channel is closed when ctx is done or on a fatal watcher error, which Err
// then reports.
func (w *Watcher) Events(ctx context.Context) (<-chan Event, error) {
	if !w.started.CompareAndSwap(false, true) {
		return nil, errors.New("watch: Events called more than once")
	}

	out := make(chan Event, w.buffer)
	go func() {
		defer close(out)
		if err := w.run(ctx, out); err != nil {
			w.logger.Error("watcher stopped", "err", err)
			w.mu.Lock()
			w.err = err
			w.mu.Unlock()
		}
	}()
	return out, nil
}

// Err returns the fatal error that closed the event channel, if any.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Watcher) run(ctx context.Context, out chan<- Event) error {
	defer func() {
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.logger.Warn("close fsnotify", "err", closeErr)
		}
	}()

	emit := func(evt Event) bool {
		select {
		case out <- evt:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case fe, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			for _, evt := range w.translate(fe) {
				if !emit(evt) {
					return nil
				}
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if hint, fatal := exhaustionHint(err); fatal {
				return fmt.Errorf("watch: fatal fsnotify error (%s): %w", hint, err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// translate maps one fsnotify event onto zero or more Events.
func (w *Watcher) translate(fe fsnotify.Event) []Event {
	rel, ok := w.relative(fe.Name)
	if !ok || w.isIgnored(rel) {
		return nil
	}

	switch {
	case fe.Has(fsnotify.Remove), fe.Has(fsnotify.Rename):
		return []Event{{Op: Removed, Path: fe.Name, Rel: rel, IsDir: w.forgetDir(fe.Name)}}

	case fe.Has(fsnotify.Create):
		info, err := os.Lstat(fe.Name)
		if err != nil {
			// Gone again before we looked; a Remove follows.
			return nil
		}
		if !info.IsDir() {
			return []Event{{Op: Created, Path: fe.Name, Rel: rel}}
		}
		events := []Event{{Op: Created, Path: fe.Name, Rel: rel, IsDir: true}}
		if err := w.addTree(fe.Name, &events); err != nil {
			w.logger.Warn("add new directory", "dir", fe.Name, "err", err)
		}
		return events

	case fe.Has(fsnotify.Write):
		return []Event{{Op: Written, Path: fe.Name, Rel: rel}}
	}

	return nil
}

// addTree registers root and every non-ignored directory below it. When
// found is non-nil, entries below root are appended to it as Created events.
func (w *Watcher) addTree(root string, found *[]Event) error {
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, walkDirErr error) error {
		if walkDirErr != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "err", walkDirErr)
			return nil //nolint:nilerr // intentional skip of inaccessible paths
		}

		rel, ok := w.relative(path)
		if !ok {
			return nil
		}

		if !d.IsDir() {
			if found != nil && !w.isIgnored(rel) {
				*found = append(*found, Event{Op: Created, Path: path, Rel: rel})
			}
			return nil
		}

		if path != w.baseDir && (w.isIgnored(rel) || w.isIgnored(rel+"/")) {
			return filepath.SkipDir
		}

		if found != nil && path != root {
			*found = append(*found, Event{Op: Created, Path: path, Rel: rel, IsDir: true})
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			if hint, fatal := exhaustionHint(addErr); fatal {
				return fmt.Errorf("watch: add directory %q (%s): %w", path, hint, addErr)
			}
			return fmt.Errorf("watch: add directory %q: %w", path, addErr)
		}
		w.mu.Lock()
		w.dirs[path] = struct{}{}
		w.mu.Unlock()
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk directory tree: %w", walkErr)
	}
	return nil
}

// forgetDir drops path and everything below it from the watched set and
// reports whether path itself was a watched directory.
func (w *Watcher) forgetDir(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, wasDir := w.dirs[path]
	if !wasDir {
		return false
	}
	prefix := path + string(filepath.Separator)
	for dir := range w.dirs {
		if dir == path || strings.HasPrefix(dir, prefix) {
			delete(w.dirs, dir)
			// fsnotify drops watches of deleted directories itself; a renamed
			// directory keeps its watch, so remove it explicitly.
			_ = w.fsw.Remove(dir)
		}
	}
	return true
}

func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// isIgnored reports whether rel (slash form, relative to BaseDir) matches
// any ignore pattern.
func (w *Watcher) isIgnored(rel string) bool {
	for _, pat := range w.ignores {
		if matched, matchErr := doublestar.Match(pat, rel); matchErr == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	out := make([]string, len(defaultIgnores))
	copy(out, defaultIgnores)
	return out
}
