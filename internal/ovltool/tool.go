// SPDX-License-Identifier: MPL-2.0

// Package ovltool invokes the Cobra Tools OVL packager as a subprocess.
//
// The packager is treated as a black box: it is given an input directory,
// a game name and an output file, and it reports success through its exit
// status. Standard output and standard error are captured so the caller can
// surface them when an entry fails.
package ovltool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/protrack/modkit/internal/fsops"
)

const (
	// EntrypointName is the packager script inside the Cobra Tools root.
	EntrypointName = "ovl_tool_cmd.py"

	// DefaultInterpreter runs the entrypoint script.
	DefaultInterpreter = "python"

	// DefaultGame is the target game passed with -g.
	DefaultGame = "Planet Coaster 2"

	subcommand = "new"
)

var (
	// ErrRootNotFound is returned when the Cobra Tools root directory is missing.
	ErrRootNotFound = errors.New("cobra tools directory not found")
	// ErrEntrypointNotFound is returned when the root lacks the packager script.
	ErrEntrypointNotFound = errors.New("ovl_tool_cmd.py not found")
)

type (
	// ExitCode is the packager's process exit status. Zero means success.
	ExitCode int

	// Request describes one packaging run.
	Request struct {
		// Input is the OVL source directory.
		Input string
		// Output is the .ovl file to create.
		Output string
		// Game is the target game name. Empty uses DefaultGame.
		Game string
		// WorkDir is the subprocess working directory.
		WorkDir string
	}

	// Result is the outcome of a run that started.
	Result struct {
		ExitCode ExitCode
		Stdout   string
		Stderr   string
	}

	// Invoker runs the packager. Invoke returns an error only when the
	// process could not be run at all; a non-zero exit is reported through
	// Result.ExitCode.
	Invoker interface {
		Invoke(ctx context.Context, req Request) (Result, error)
	}

	// Tool is the subprocess Invoker for a Cobra Tools checkout.
	Tool struct {
		root        string
		interpreter string
	}
)

// IsSuccess reports whether the exit code means success.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// String returns the decimal form of the exit code.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// Success reports whether the run exited with status zero.
func (r Result) Success() bool { return r.ExitCode.IsSuccess() }

// New returns a Tool rooted at root. An empty interpreter uses
// DefaultInterpreter.
func New(root, interpreter string) *Tool {
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	return &Tool{root: root, interpreter: interpreter}
}

// Entrypoint returns the path of the packager script.
func (t *Tool) Entrypoint() string {
	return filepath.Join(t.root, EntrypointName)
}

// Validate checks that the root directory and the entrypoint exist.
func (t *Tool) Validate() error {
	if !fsops.IsDir(t.root) {
		return fmt.Errorf("%w: %s", ErrRootNotFound, t.root)
	}
	if !fsops.IsFile(t.Entrypoint()) {
		return fmt.Errorf("%w: %s", ErrEntrypointNotFound, t.Entrypoint())
	}
	return nil
}

// Argv returns the full command line for req, interpreter first.
func (t *Tool) Argv(req Request) []string {
	game := req.Game
	if game == "" {
		game = DefaultGame
	}
	return []string{
		t.interpreter,
		t.Entrypoint(),
		subcommand,
		"-i", req.Input,
		"-g", game,
		"-o", req.Output,
		"--force",
	}
}

// Invoke runs the packager and waits for it to finish.
func (t *Tool) Invoke(ctx context.Context, req Request) (Result, error) {
	argv := t.Argv(req)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = req.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = ExitCode(exitErr.ExitCode())
		return result, nil
	}
	return result, fmt.Errorf("run %s: %w", t.interpreter, err)
}

// FormatArgv renders argv as a shell-quoted command line for logs.
func FormatArgv(argv []string) string {
	parts := make([]string, len(argv))
	for i, arg := range argv {
		quoted, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			quoted = strconv.Quote(arg)
		}
		parts[i] = quoted
	}
	return strings.Join(parts, " ")
}
