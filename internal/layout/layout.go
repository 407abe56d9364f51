// Package layout manages the on-disk tree clones are placed in:
// <root>/<organization>/<repository>.
package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirPerm is the mode used for directories created by EnsureDirectory.
const DirPerm os.FileMode = 0o755

// NotDirectoryError indicates the path exists but is not a directory
type NotDirectoryError struct {
	Path string
}

func (e *NotDirectoryError) Error() string {
	return fmt.Sprintf("path exists and is not a directory: %s", e.Path)
}

// EnsureDirectory creates path, and any missing parents, unless it already exists
// as a directory. Calling it again for the same path is a no-op, and concurrent
// callers targeting the same path do not fail each other.
func EnsureDirectory(path string) error {
	if path == "" {
		return fmt.Errorf("error creating directory: empty path")
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return &NotDirectoryError{Path: path}
		}

		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("error checking directory %s: %w", path, err)
	}

	if err := os.MkdirAll(path, DirPerm); err != nil {
		return fmt.Errorf("error creating directory %s: %w", path, err)
	}

	return nil
}

// OrganizationFolder returns the directory clones of org are placed in.
func OrganizationFolder(root, org string) string {
	return filepath.Join(root, org)
}

// Within reports whether path lies inside root (or is root itself).
func Within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
