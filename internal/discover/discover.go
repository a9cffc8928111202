// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover builds the worklist of PDFs to convert from a file or a
// directory tree, skipping documents whose output already exists.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const pdfExt = ".pdf"

var (
	ErrPathNotFound = errors.New("path not found")
	ErrNotAPDF      = errors.New("expected a PDF file")
	ErrNoPDFsFound  = errors.New("no PDF files found in directory")
)

// Result is the outcome of a discovery scan.
type Result struct {
	// Files are absolute source paths in processing order.
	Files []string

	// Found counts every PDF seen before filtering.
	Found int

	// Skipped counts PDFs excluded because their output already exists.
	Skipped int

	// Single is true when the root was a single file.
	Single bool
}

// IsPDF reports whether path has a .pdf extension, ignoring case.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), pdfExt)
}

// SiblingPath returns path with its extension replaced by ext.
func SiblingPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// Discover resolves root into a worklist. A file root yields itself; a
// directory root is walked recursively and each PDF whose targetExt sibling
// already exists is skipped. The returned files are sorted by path.
func Discover(root, targetExt string) (Result, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Result{}, fmt.Errorf("resolving %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrPathNotFound, abs)
		}
		return Result{}, fmt.Errorf("inspecting %s: %w", abs, err)
	}

	switch {
	case info.Mode().IsRegular():
		if !IsPDF(abs) {
			return Result{}, fmt.Errorf("%w, got: %s", ErrNotAPDF, filepath.Base(abs))
		}
		return Result{Files: []string{abs}, Found: 1, Single: true}, nil
	case info.IsDir():
		return scanDir(abs, targetExt)
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrPathNotFound, abs)
	}
}

func scanDir(dir, targetExt string) (Result, error) {
	candidates, err := findPDFs(dir)
	if err != nil {
		return Result{}, err
	}
	if len(candidates) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrNoPDFsFound, dir)
	}

	res := Result{Found: len(candidates)}
	seen := make(map[string]bool, len(candidates))
	for _, pdf := range candidates {
		if exists(SiblingPath(pdf, targetExt)) {
			res.Skipped++
			continue
		}
		key := identity(pdf)
		if seen[key] {
			continue
		}
		seen[key] = true
		res.Files = append(res.Files, pdf)
	}

	sort.Strings(res.Files)
	return res, nil
}

// findPDFs walks dir and returns every regular file with a .pdf extension.
// When dir is a symlink the walk runs over its target, but the returned paths
// stay under dir.
func findPDFs(dir string) ([]string, error) {
	walkRoot, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	var out []string
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsPDF(path) {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr != nil || !info.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		if walkRoot != dir {
			rel, relErr := filepath.Rel(walkRoot, path)
			if relErr != nil {
				return relErr
			}
			path = filepath.Join(dir, rel)
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return out, nil
}

// identity resolves symlinks so two names for one file count once.
func identity(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// NextFreePath returns path if nothing exists there, otherwise the first
// "{stem}_{n}{ext}" sibling that does not exist, counting n from 1.
func NextFreePath(path string) string {
	if !exists(path) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if !exists(candidate) {
			return candidate
		}
	}
}
