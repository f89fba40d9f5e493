// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/protrack/modkit/internal/fsops"
	"github.com/protrack/modkit/internal/issue"
	"github.com/protrack/modkit/internal/listfile"
	"github.com/protrack/modkit/internal/ovltool"
	"github.com/protrack/modkit/pkg/uipkg"

	"github.com/charmbracelet/log"
)

// ErrPrecondition marks failures detected before any entry is processed.
var ErrPrecondition = errors.New("build precondition failed")

type (
	// Packager is an OVL packager bound to one Cobra Tools checkout.
	Packager interface {
		ovltool.Invoker
		Validate() error
		Argv(req ovltool.Request) []string
	}

	// PackagerFactory creates the Packager for a Cobra Tools root.
	PackagerFactory func(root string) Packager

	// Option configures a Driver.
	Option func(*Driver)

	// Driver processes .ovlpaths manifests. It is not safe for concurrent use.
	Driver struct {
		newPackager PackagerFactory
		logger      *log.Logger
		python      string
		game        string
		dryRun      bool
	}

	// EntryResult is the outcome of one .ovlpaths line.
	EntryResult struct {
		Line     int
		Path     string
		Input    string
		Output   string
		Packages []string
		ExitCode ovltool.ExitCode
		Err      error
	}

	// Report summarizes a Process call.
	Report struct {
		Entries   []EntryResult
		Succeeded int
		Failed    int
	}
)

// Success reports whether every entry succeeded.
func (r Report) Success() bool { return r.Failed == 0 }

// Failed reports whether the entry failed.
func (e EntryResult) Failed() bool { return e.Err != nil || !e.ExitCode.IsSuccess() }

// WithLogger sets the logger. The default writes to stderr with the "build" prefix.
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithPython sets the interpreter that runs the packager script.
func WithPython(python string) Option {
	return func(d *Driver) { d.python = python }
}

// WithGame sets the game name passed to the packager and written into UI packages.
func WithGame(game string) Option {
	return func(d *Driver) { d.game = game }
}

// WithDryRun builds UI packages but only logs the packager command lines.
func WithDryRun(dryRun bool) Option {
	return func(d *Driver) { d.dryRun = dryRun }
}

// WithPackagerFactory replaces the subprocess packager, mainly for tests.
func WithPackagerFactory(f PackagerFactory) Option {
	return func(d *Driver) { d.newPackager = f }
}

// NewDriver returns a Driver with the given options applied.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{
		python: ovltool.DefaultInterpreter,
		game:   ovltool.DefaultGame,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = NewLogger(os.Stderr)
	}
	if d.newPackager == nil {
		python := d.python
		d.newPackager = func(root string) Packager { return ovltool.New(root, python) }
	}
	return d
}

// NewLogger returns the component logger used by the driver.
func NewLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{Prefix: "build"})
}

// Process runs the packager once for each entry of the .ovlpaths file next
// to manifestPath. Per-entry failures are counted in the Report and never
// stop the batch; the returned error is non-nil only for precondition
// failures, which wrap ErrPrecondition.
func (d *Driver) Process(ctx context.Context, cobraToolsPath, manifestPath string) (Report, error) {
	if cobraToolsPath == "" {
		return Report{}, preconditionError(issue.CobraToolsNotFoundId, "locate Cobra Tools", "",
			errors.New("no Cobra Tools path given"),
			"Pass the Cobra Tools directory as the first argument",
			"Or set COBRA_TOOLS_PATH / build.cobra_tools_path and pass '-'")
	}

	manifestDir, err := filepath.Abs(filepath.Dir(manifestPath))
	if err != nil {
		return Report{}, fmt.Errorf("resolve manifest directory: %w", err)
	}

	packager := d.newPackager(cobraToolsPath)
	if err := packager.Validate(); err != nil {
		return Report{}, preconditionError(issue.CobraToolsNotFoundId, "locate Cobra Tools", cobraToolsPath, err,
			"Check that the path points at a Cobra Tools checkout",
			"The directory must contain "+ovltool.EntrypointName)
	}

	pathsFile := filepath.Join(manifestDir, listfile.OVLPathsName)
	if !fsops.IsFile(pathsFile) {
		return Report{}, preconditionError(issue.OVLPathsNotFoundId, "read OVL path list", pathsFile,
			fmt.Errorf("%s file not found", listfile.OVLPathsName),
			"Create a .ovlpaths file next to Manifest.xml listing one OVL directory per line")
	}

	entries, err := listfile.ReadFile(pathsFile)
	if err != nil {
		return Report{}, preconditionError(issue.OVLPathsNotFoundId, "read OVL path list", pathsFile, err)
	}

	d.logger.Info("Processing .ovlpaths", "file", pathsFile)
	d.logger.Info("Manifest directory", "dir", manifestDir)
	d.logger.Info("Cobra Tools path", "dir", cobraToolsPath)

	var report Report
	for _, entry := range entries {
		res := d.processEntry(ctx, packager, manifestDir, entry)
		report.Entries = append(report.Entries, res)
		if res.Failed() {
			report.Failed++
		} else {
			report.Succeeded++
		}
	}

	d.logger.Infof("Processing complete: %d succeeded, %d failed", report.Succeeded, report.Failed)
	return report, nil
}

func (d *Driver) processEntry(ctx context.Context, packager Packager, manifestDir string, entry listfile.Entry) EntryResult {
	input := entry.Resolve(manifestDir)
	res := EntryResult{
		Line:   entry.Line,
		Path:   entry.Raw,
		Input:  input,
		Output: input + ".ovl",
	}

	logger := d.logger.With("line", entry.Line)
	logger.Info("Processing", "path", entry.Raw)
	logger.Debug("Paths", "input", res.Input, "output", res.Output)

	packages, err := d.buildUIPackages(logger, manifestDir, input)
	res.Packages = packages
	if err != nil {
		res.Err = err
		logger.Error("UI packaging failed", "err", err)
		return res
	}

	if err := ctx.Err(); err != nil {
		res.Err = err
		logger.Error("Canceled", "err", err)
		return res
	}

	req := ovltool.Request{
		Input:   res.Input,
		Output:  res.Output,
		Game:    d.game,
		WorkDir: manifestDir,
	}

	if d.dryRun {
		logger.Info("Dry run", "cmd", ovltool.FormatArgv(packager.Argv(req)))
		return res
	}

	logger.Info("Packaging OVL...")
	result, err := packager.Invoke(ctx, req)
	if err != nil {
		res.Err = err
		logger.Error("Packager could not run", "err", err)
		return res
	}

	res.ExitCode = result.ExitCode
	if !result.Success() {
		logger.Error("Failed", "exit_code", result.ExitCode)
		if result.Stdout != "" {
			logger.Error("stdout", "output", result.Stdout)
		}
		if result.Stderr != "" {
			logger.Error("stderr", "output", result.Stderr)
		}
		return res
	}

	logger.Info("Finished.")
	return res
}

// buildUIPackages bundles every directory listed in input/.uipackages and
// returns the written package paths. Missing package directories are skipped.
func (d *Driver) buildUIPackages(logger *log.Logger, manifestDir, input string) ([]string, error) {
	listPath := filepath.Join(input, listfile.UIPackagesName)
	if !fsops.IsFile(listPath) {
		return nil, nil
	}

	logger.Info("Found .uipackages file")
	entries, err := listfile.ReadFile(listPath)
	if err != nil {
		return nil, err
	}

	basis, err := filepath.Rel(filepath.Dir(manifestDir), input)
	if err != nil {
		return nil, fmt.Errorf("compute basis path: %w", err)
	}
	basis = filepath.ToSlash(basis)

	var written []string
	for _, entry := range entries {
		pkgDir := entry.Resolve(input)
		logger.Info("Building UI package", "package", entry.Raw)

		if !fsops.IsDir(pkgDir) {
			logger.Warn("UI package does not exist, skipping", "dir", pkgDir)
			continue
		}

		output := filepath.Join(filepath.Dir(pkgDir), filepath.Base(pkgDir)+uipkg.Extension)
		w := uipkg.NewWriter(basis, output, uipkg.WithGame(d.game))
		if err := w.ImportAll(pkgDir); err != nil {
			return written, fmt.Errorf("import %s: %w", pkgDir, err)
		}
		if err := w.Close(); err != nil {
			return written, fmt.Errorf("write %s: %w", output, err)
		}
		logger.Debug("Wrote UI package", "file", output, "items", w.Len())
		written = append(written, output)
	}

	logger.Info("Finished building UI packages")
	return written, nil
}

func preconditionError(id issue.Id, op, resource string, cause error, suggestions ...string) error {
	ctx := issue.NewErrorContext().
		WithOperation(op).
		WithResource(resource).
		WithIssue(id).
		Wrap(fmt.Errorf("%w: %w", ErrPrecondition, cause))
	for _, s := range suggestions {
		ctx = ctx.WithSuggestion(s)
	}
	return ctx.BuildError()
}
