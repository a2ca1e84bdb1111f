// Package workspace confines every filesystem operation to a single root
// directory. Tool arguments are untrusted model output, so relative paths
// are canonicalized after joining to the root and rejected when the result
// lands outside it.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a resolved path falls outside the workspace.
var ErrPathEscape = errors.New("workspace: path escapes workspace root")

// Workspace is the sandboxed root for all agent file operations.
// Root is absolute with symlinks resolved; it is fixed for the process
// lifetime.
type Workspace struct {
	Root string
}

// New resolves root to an absolute, symlink-free path and creates the
// directory if it does not exist.
func New(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("workspace: create %s: %w", abs, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace: canonicalize %s: %w", abs, err)
	}
	return &Workspace{Root: resolved}, nil
}

// Resolve maps an untrusted relative path to an absolute path inside the
// workspace. Leading separators and volume names are stripped first so an
// absolute-path injection degrades to a relative one, then the joined path
// is canonicalized and checked against Root. Canonicalization happens after
// the join: a traversal sequence that survives string filtering still cannot
// escape.
func (w *Workspace) Resolve(rel string) (string, error) {
	cleaned := strings.TrimSpace(rel)
	cleaned = strings.TrimLeft(cleaned, "/\\")
	if vol := filepath.VolumeName(cleaned); vol != "" {
		cleaned = strings.TrimLeft(cleaned[len(vol):], "/\\")
	}

	joined := filepath.Join(w.Root, filepath.FromSlash(cleaned))
	if !w.contains(joined) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
	}

	// The lexical check above does not see symlinks. Resolve the deepest
	// existing ancestor and re-check, so a symlink inside the workspace
	// cannot point a write outside it.
	real, err := resolveExisting(joined)
	if err != nil {
		return "", fmt.Errorf("workspace: canonicalize %s: %w", rel, err)
	}
	if !w.contains(real) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
	}

	return joined, nil
}

// Rel returns path relative to the workspace root, for display in tool
// results. Falls back to the input when path is not under the root.
func (w *Workspace) Rel(path string) string {
	rel, err := filepath.Rel(w.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// contains reports whether path equals Root or is nested under it.
func (w *Workspace) contains(path string) bool {
	if path == w.Root {
		return true
	}
	return strings.HasPrefix(path, w.Root+string(filepath.Separator))
}

// resolveExisting resolves symlinks on the deepest existing ancestor of path
// and rejoins the non-existing tail. The target of a write may not exist
// yet; its parents decide where it really lands.
func resolveExisting(path string) (string, error) {
	remainder := []string{}
	current := path

	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(append([]string{resolved}, remainder...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		remainder = append([]string{filepath.Base(current)}, remainder...)
		current = parent
	}
}
