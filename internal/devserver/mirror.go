// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/protrack/modkit/internal/fsops"
	"github.com/protrack/modkit/internal/watch"

	"github.com/charmbracelet/log"
)

const (
	// DefaultDebounce is the minimum mtime advance for a path to be copied again.
	DefaultDebounce = 100 * time.Millisecond
	// DefaultSettle is the pause before copying so writers can finish.
	DefaultSettle = 50 * time.Millisecond
)

type (
	// MirrorConfig configures a Mirror.
	MirrorConfig struct {
		Source   string
		Target   string
		Debounce time.Duration
		Settle   time.Duration
		Flag     *ReloadFlag
		Logger   *log.Logger
	}

	// Mirror applies source-tree changes to the target tree. Apply must be
	// called from one goroutine at a time.
	Mirror struct {
		source   string
		target   string
		debounce time.Duration
		settle   time.Duration
		flag     *ReloadFlag
		logger   *log.Logger
		lastSeen map[string]time.Time
	}
)

// NewMirror returns a Mirror. Negative durations are treated as zero; a nil
// Flag gets a fresh one.
func NewMirror(cfg MirrorConfig) (*Mirror, error) {
	source, err := filepath.Abs(cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("resolve source directory: %w", err)
	}
	target, err := filepath.Abs(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("resolve target directory: %w", err)
	}

	m := &Mirror{
		source:   source,
		target:   target,
		debounce: max(cfg.Debounce, 0),
		settle:   max(cfg.Settle, 0),
		flag:     cfg.Flag,
		logger:   cfg.Logger,
		lastSeen: make(map[string]time.Time),
	}
	if m.flag == nil {
		m.flag = &ReloadFlag{}
	}
	if m.logger == nil {
		m.logger = NewLogger(os.Stderr)
	}
	return m, nil
}

// Source returns the absolute source directory.
func (m *Mirror) Source() string { return m.source }

// Target returns the absolute target directory.
func (m *Mirror) Target() string { return m.target }

// Flag returns the reload flag set by Apply.
func (m *Mirror) Flag() *ReloadFlag { return m.flag }

// InitialSync brings the target up to date. A missing target receives a
// full copy; otherwise files that are missing from the target or newer in
// the source are copied. Files only present in the target are left alone.
func (m *Mirror) InitialSync() (int, error) {
	m.logger.Info("Performing initial sync...")

	if !fsops.IsDir(m.target) {
		copied := 0
		if err := filepath.WalkDir(m.source, func(_ string, d fs.DirEntry, err error) error {
			if err == nil && !d.IsDir() {
				copied++
			}
			return err
		}); err != nil {
			return 0, fmt.Errorf("scan source: %w", err)
		}
		if err := fsops.CopyTree(m.source, m.target); err != nil {
			return 0, err
		}
		m.logger.Info("Initial sync complete", "copied", copied)
		return copied, nil
	}

	copied := 0
	err := filepath.WalkDir(m.source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(m.source, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(m.target, rel)

		if dstInfo, statErr := os.Stat(dst); statErr == nil && !info.ModTime().After(dstInfo.ModTime()) {
			return nil
		}
		if err := fsops.CopyFile(path, dst); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("initial sync: %w", err)
	}

	m.logger.Info("Initial sync complete", "copied", copied)
	return copied, nil
}

// Run applies events until the channel closes or ctx is done.
func (m *Mirror) Run(ctx context.Context, events <-chan watch.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			m.Apply(evt)
		}
	}
}

// Apply mirrors one event and reports whether the target changed. Errors
// are logged, never returned, so one bad event does not stop the loop.
func (m *Mirror) Apply(evt watch.Event) bool {
	rel, ok := m.relative(evt.Path)
	if !ok {
		m.logger.Debug("ignoring event outside source", "path", evt.Path)
		return false
	}
	dst := filepath.Join(m.target, rel)
	logger := m.logger.With("path", filepath.ToSlash(rel))

	switch evt.Op {
	case watch.Created, watch.Written:
		if evt.IsDir || !m.shouldSync(evt.Path) {
			return false
		}
		if m.settle > 0 {
			time.Sleep(m.settle)
		}
		if !fsops.IsFile(evt.Path) {
			return false
		}
		if err := fsops.CopyFile(evt.Path, dst); err != nil {
			logger.Error("Copy failed", "op", evt.Op, "err", err)
			return false
		}
		if evt.Op == watch.Created {
			logger.Info("Copied", "op", evt.Op)
		} else {
			logger.Info("Updated", "op", evt.Op)
		}
		m.flag.Set()
		return true

	case watch.Removed:
		m.forget(evt.Path)
		removed, err := fsops.RemovePath(dst)
		if err != nil {
			logger.Error("Delete failed", "err", err)
			return false
		}
		if !removed {
			return false
		}
		logger.Info("Deleted")
		m.flag.Set()
		return true
	}

	return false
}

// shouldSync drops events whose file mtime has not advanced by at least
// the debounce window since the last accepted event for the same path.
func (m *Mirror) shouldSync(path string) bool {
	var mtime time.Time
	if info, err := os.Stat(path); err == nil {
		mtime = info.ModTime()
	}
	if mtime.Sub(m.lastSeen[path]) < m.debounce {
		return false
	}
	m.lastSeen[path] = mtime
	return true
}

func (m *Mirror) forget(path string) {
	prefix := path + string(filepath.Separator)
	for p := range m.lastSeen {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.lastSeen, p)
		}
	}
}

func (m *Mirror) relative(path string) (string, bool) {
	rel, err := filepath.Rel(m.source, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
