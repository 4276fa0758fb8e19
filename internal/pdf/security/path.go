// Package security confines the files the server reads and writes to its
// configured directory.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
)

// PathValidator resolves client supplied paths against a root directory
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at dir
func NewPathValidator(dir string) (*PathValidator, error) {
	if dir == "" {
		return nil, maperrors.New(maperrors.ErrorTypeConfiguration, "path validator", "configured directory cannot be empty")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, maperrors.Wrap(maperrors.ErrorTypeConfiguration, "path validator", dir, err)
	}

	return &PathValidator{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute configured directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve returns the absolute form of an input path. Relative paths are
// taken from the root. The result must stay within the root, following
// symlinks when the file exists.
func (v *PathValidator) Resolve(path string) (string, error) {
	abs, err := v.absolute(path)
	if err != nil {
		return "", err
	}

	if !v.within(abs) {
		return "", outside(path)
	}

	if real, err := filepath.EvalSymlinks(abs); err == nil && !v.within(real) {
		return "", outside(path)
	}

	return abs, nil
}

// ResolveOutput resolves a path that is about to be written. The file may
// not exist yet, so only its nearest existing ancestor is checked for
// symlinks leaving the root.
func (v *PathValidator) ResolveOutput(path string) (string, error) {
	abs, err := v.absolute(path)
	if err != nil {
		return "", err
	}

	if !v.within(abs) {
		return "", outside(path)
	}

	dir := filepath.Dir(abs)
	for {
		if _, err := os.Lstat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if real, err := filepath.EvalSymlinks(dir); err == nil && !v.within(real) {
		return "", outside(path)
	}

	return abs, nil
}

func (v *PathValidator) absolute(path string) (string, error) {
	// Remove null bytes
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", maperrors.New(maperrors.ErrorTypeOpen, "resolve path", "path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", maperrors.Wrap(maperrors.ErrorTypeOpen, "resolve path", path, err)
	}
	return filepath.Clean(abs), nil
}

// within reports whether path is the root or below it. The root itself is
// compared both as configured and with symlinks evaluated.
func (v *PathValidator) within(path string) bool {
	roots := []string{v.root}
	if real, err := filepath.EvalSymlinks(v.root); err == nil && real != v.root {
		roots = append(roots, real)
	}

	for _, root := range roots {
		if path == root {
			return true
		}
		prefix := root
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func outside(path string) error {
	return maperrors.New(maperrors.ErrorTypeOpen, "resolve path",
		fmt.Sprintf("path is outside configured directory: %s", path))
}
