// Package static maps request paths onto a site root and loads the files
// found there.
package static

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// IndexFile is served in place of a directory.
const IndexFile = "index.html"

var ErrOutsideRoot = errors.New("path escapes root")

// ResolvePath turns urlPath into a file path beneath root. A path that names
// an existing directory resolves to the IndexFile inside it. The result is
// lexically cleaned and must stay under root; symbolic links are neither
// followed nor checked.
func ResolvePath(root, urlPath string) (string, error) {
	if strings.IndexByte(urlPath, 0) >= 0 {
		return "", ErrOutsideRoot
	}

	rel := strings.TrimPrefix(urlPath, "/")
	if rel == "" {
		return filepath.Join(root, IndexFile), nil
	}

	candidate := filepath.Join(root, filepath.FromSlash(rel))
	if !within(root, candidate) {
		return "", ErrOutsideRoot
	}

	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		candidate = filepath.Join(candidate, IndexFile)
	}
	return candidate, nil
}

// within reports whether path is root itself or lies beneath it. Both are
// compared in cleaned form.
func within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
