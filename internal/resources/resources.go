// Package resources locates the files bundled with the widget.
package resources

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no root holds the requested file.
var ErrNotFound = errors.New("resource not found")

// Bundled file names, relative to a resource root.
const (
	IconFile   = "icon.png"
	LayoutFile = "ui/clock.yaml"
)

const appName = "clockwidget"

// Resolver looks files up under an ordered list of roots.
type Resolver struct {
	roots []string
}

// NewResolver creates a resolver over roots, in priority order. Empty and
// duplicate roots are dropped.
func NewResolver(roots ...string) *Resolver {
	seen := make(map[string]bool, len(roots))
	r := &Resolver{}
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		if seen[root] {
			continue
		}
		seen[root] = true
		r.roots = append(r.roots, root)
	}
	return r
}

// Default returns a resolver over DefaultRoots.
func Default() *Resolver {
	return NewResolver(DefaultRoots()...)
}

// DefaultRoots returns the packaged roots followed by the working directory.
// Priority:
// 1) $APPDIR/usr/share/clockwidget (if APPDIR is set)
// 2) the directory holding the executable
// 3) the current working directory
func DefaultRoots() []string {
	var roots []string
	if appDir := os.Getenv("APPDIR"); appDir != "" {
		roots = append(roots, filepath.Join(appDir, "usr", "share", appName))
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		roots = append(roots, filepath.Dir(exe))
	}
	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd)
	}
	return roots
}

// Roots returns the search roots in priority order.
func (r *Resolver) Roots() []string {
	return append([]string(nil), r.roots...)
}

// Path returns the location of name under the first root that has it as a
// regular file. name must be a relative, slash-separated path that stays
// inside the root.
func (r *Resolver) Path(name string) (string, error) {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("invalid resource name %q", name)
	}
	for _, root := range r.roots {
		path := filepath.Join(root, rel)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s: %w (searched %s)", name, ErrNotFound, strings.Join(r.roots, ", "))
}

// Open opens name from the first root that has it.
func (r *Resolver) Open(name string) (*os.File, error) {
	path, err := r.Path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}
