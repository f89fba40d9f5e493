// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

// ErrInvalidWatchConfig is the sentinel wrapped by InvalidWatchConfigError.
var ErrInvalidWatchConfig = errors.New("invalid watch config")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// BaseDir is the root directory to watch recursively. Empty means the
		// current working directory.
		BaseDir string

		// Ignore are doublestar patterns, matched against slash-form paths
		// relative to BaseDir, merged with the built-in default ignores.
		Ignore []string

		// Logger receives non-fatal watcher errors. nil uses a stderr logger
		// with the "watch" prefix.
		Logger *log.Logger

		// Buffer is the event channel capacity. Zero uses defaultBuffer.
		Buffer int
	}

	// InvalidWatchConfigError collects every invalid Config field.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}
)

func (e *InvalidWatchConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid watch config (%d errors): %s", len(e.FieldErrors), strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidWatchConfig for errors.Is checks.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

// Validate reports every invalid field of c.
func (c Config) Validate() error {
	var errs []error
	if c.BaseDir != "" && strings.TrimSpace(c.BaseDir) == "" {
		errs = append(errs, errors.New("base dir must not be blank"))
	}
	for i, pat := range c.Ignore {
		if pat == "" {
			errs = append(errs, fmt.Errorf("ignore[%d]: empty pattern", i))
			continue
		}
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("ignore[%d]: pattern %q: %w", i, pat, doublestar.ErrBadPattern))
		}
	}
	if c.Buffer < 0 {
		errs = append(errs, fmt.Errorf("buffer: %d is negative", c.Buffer))
	}
	if len(errs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: errs}
	}
	return nil
}
