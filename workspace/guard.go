// Package workspace confines tool paths to a fixed root directory.
//
// Information Hiding:
// - Path normalisation rules hidden behind Resolve
// - Root canonicalisation done once at construction
//
// The guard is advisory. It does not evaluate symlinks and is not a
// security boundary against a hostile model.
package workspace

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a path resolves outside the workspace root.
var ErrPathEscape = errors.New("path escapes workspace")

// ErrEmptyPath is returned for blank path arguments.
var ErrEmptyPath = errors.New("path is required")

// Guard resolves tool path arguments against an immutable root.
type Guard struct {
	root string
}

// New creates a guard rooted at root. Relative roots are made absolute
// against the current working directory.
func New(root string) (*Guard, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("workspace root: %w", ErrEmptyPath)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace root %q: %w", root, err)
	}
	return &Guard{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute workspace root.
func (g *Guard) Root() string {
	return g.root
}

// Resolve returns the absolute form of path, or ErrPathEscape when the
// path is not the root or one of its descendants.
func (g *Guard) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Join(g.root, path)
	}

	rel, err := filepath.Rel(g.root, abs)
	if err != nil || escapes(rel) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, path)
	}
	return abs, nil
}

// escapes reports whether a root-relative path climbs out of the root.
// Only a leading ".." segment counts; a file named "..foo" stays inside.
func escapes(rel string) bool {
	if filepath.IsAbs(rel) {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
