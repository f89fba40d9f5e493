// SPDX-License-Identifier: MPL-2.0

// Package dist zips a built mod folder into a distributable archive rooted
// at the mod's declared name.
package dist

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/protrack/modkit/internal/fsops"
)

// Result describes a written archive.
type Result struct {
	// Name is the mod name used as the archive root folder.
	Name string
	// Output is the absolute archive path.
	Output string
	// Entries are the archive entry names in write order.
	Entries []string
}

// Packager builds distribution archives.
type Packager struct {
	extensions []string
}

// DefaultExtensions are the file extensions packed from anywhere in the tree.
func DefaultExtensions() []string {
	return []string{".ovl", ".ovs", ".aux", ".ini"}
}

// New returns a Packager matching extensions (with leading dot, compared
// case-sensitively). An empty list uses DefaultExtensions.
func New(extensions []string) *Packager {
	if len(extensions) == 0 {
		extensions = DefaultExtensions()
	}
	return &Packager{extensions: slices.Clone(extensions)}
}

// BuildArchive packs sourceDir into outputFile using DefaultExtensions.
func BuildArchive(sourceDir, outputFile string) (Result, error) {
	return New(nil).Build(sourceDir, outputFile)
}

// Build writes the archive. The manifest is validated before outputFile is
// created; if writing fails afterwards the partial file is removed.
func (p *Packager) Build(sourceDir, outputFile string) (result Result, err error) {
	root, err := filepath.Abs(sourceDir)
	if err != nil {
		return Result{}, fmt.Errorf("resolve source directory: %w", err)
	}

	manifestPath := filepath.Join(root, ManifestFileName)
	if !fsops.IsFile(manifestPath) {
		return Result{}, fmt.Errorf("%s not found in the top-level directory: %w", ManifestFileName, os.ErrNotExist)
	}

	manifest, err := ReadManifest(manifestPath)
	if err != nil {
		return Result{}, err
	}

	output, err := filepath.Abs(outputFile)
	if err != nil {
		return Result{}, fmt.Errorf("resolve output path: %w", err)
	}

	files, err := p.collect(root, manifestPath, output)
	if err != nil {
		return Result{}, err
	}

	zipFile, err := os.Create(output)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create ZIP file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(output) // Best-effort cleanup of the partial archive
		}
	}()
	defer func() {
		if closeErr := zipFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	zw := zip.NewWriter(zipFile)

	result = Result{Name: manifest.Name, Output: output}
	for _, path := range files {
		name, addErr := addFile(zw, root, manifest.Name, path)
		if addErr != nil {
			_ = zw.Close()
			return Result{}, addErr
		}
		result.Entries = append(result.Entries, name)
	}

	if err := zw.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to finalize ZIP file: %w", err)
	}
	return result, nil
}

// collect lists the files to pack: the manifest, top-level readme/license
// files, then every file with an allowed extension. A file can appear twice.
func (p *Packager) collect(root, manifestPath, output string) ([]string, error) {
	files := []string{manifestPath}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}
	for _, e := range entries {
		lower := strings.ToLower(e.Name())
		if !strings.HasPrefix(lower, "readme") && !strings.HasPrefix(lower, "license") {
			continue
		}
		path := filepath.Join(root, e.Name())
		if fsops.IsFile(path) {
			files = append(files, path)
		}
	}

	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path == output {
			return nil
		}
		if slices.Contains(p.extensions, filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk source directory: %w", walkErr)
	}
	return files, nil
}

func addFile(zw *zip.Writer, root, name, path string) (entry string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("compute archive path: %w", err)
	}
	entry = name + "/" + filepath.ToSlash(rel)

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return "", fmt.Errorf("failed to create file header: %w", err)
	}
	header.Name = entry
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return "", fmt.Errorf("failed to create ZIP entry: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(w, f); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", entry, err)
	}
	return entry, nil
}
