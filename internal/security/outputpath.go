// Package security guards the files the tool writes.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrOutsideAllowedDirs = errors.New("output path outside allowed directories")

// canonicalize returns the absolute, symlink-free form of path. When path does
// not exist yet, the nearest existing ancestor is resolved and the remaining
// components are appended, so a symlinked parent cannot redirect the write.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	dir := abs
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			rest, err := filepath.Rel(parent, abs)
			if err != nil {
				return "", err
			}
			return filepath.Join(resolved, rest), nil
		}
		dir = parent
	}
}

// Within reports an error unless path resolves to a location under dir.
func Within(path, dir string) error {
	canonicalPath, err := canonicalize(path)
	if err != nil {
		return err
	}
	canonicalDir, err := canonicalize(dir)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(canonicalDir, canonicalPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutsideAllowedDirs, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s escapes %s", ErrOutsideAllowedDirs, path, dir)
	}
	return nil
}

// ValidateOutputPath checks a file the tool is about to create or overwrite
// (preview, metrics textfile, history database). It must lie under the working
// directory, the temp directory or one of extraDirs, and must not name an
// existing directory.
func ValidateOutputPath(path string, extraDirs ...string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("output path is empty")
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return fmt.Errorf("output path %s is a directory", path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	allowed := append([]string{cwd, os.TempDir()}, extraDirs...)
	for _, dir := range allowed {
		if Within(path, dir) == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %s (allowed: %v)", ErrOutsideAllowedDirs, path, allowed)
}
