package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestResolve_NestedPath(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace(t)
	got, err := w.Resolve("notas/idea.txt")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := filepath.Join(w.Root, "notas", "idea.txt")
	if got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestResolve_EmptyIsRoot(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace(t)
	got, err := w.Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != w.Root {
		t.Fatalf("Resolve(\"\") = %q, want root %q", got, w.Root)
	}
}

func TestResolve_TraversalRejected(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace(t)
	cases := []string{
		"..",
		"../outside.txt",
		"../../etc/passwd",
		"notas/../../outside.txt",
		"notas/../../../outside.txt",
		"./../outside.txt",
	}
	for _, rel := range cases {
		if _, err := w.Resolve(rel); !errors.Is(err, ErrPathEscape) {
			t.Errorf("Resolve(%q): want ErrPathEscape, got %v", rel, err)
		}
	}
}

func TestResolve_LeadingSeparatorsStripped(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace(t)
	cases := []string{"/etc/passwd", "//etc/passwd", `\etc\passwd`, `\\server\share`}
	for _, rel := range cases {
		got, err := w.Resolve(rel)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", rel, err)
		}
		if !strings.HasPrefix(got, w.Root) {
			t.Errorf("Resolve(%q) = %q, escapes root %q", rel, got, w.Root)
		}
	}
}

func TestResolve_InteriorTraversalAllowed(t *testing.T) {
	t.Parallel()

	// Traversal that stays inside the workspace is legitimate.
	w := newTestWorkspace(t)
	got, err := w.Resolve("notas/../salida/informe.txt")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := filepath.Join(w.Root, "salida", "informe.txt")
	if got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestResolve_SymlinkEscapeRejected(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	w := newTestWorkspace(t)
	outside := t.TempDir()
	link := filepath.Join(w.Root, "fuera")
	if err := os.Symlink(outside, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	if _, err := w.Resolve("fuera/archivo.txt"); !errors.Is(err, ErrPathEscape) {
		t.Fatalf("want ErrPathEscape through symlink, got %v", err)
	}
}

func TestNew_CreatesRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "espacio")
	w, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	info, err := os.Stat(w.Root)
	if err != nil || !info.IsDir() {
		t.Fatalf("root not created: %v", err)
	}
}

func TestRel(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace(t)
	abs := filepath.Join(w.Root, "docs", "a.txt")
	if got := w.Rel(abs); got != "docs/a.txt" {
		t.Fatalf("Rel = %q, want %q", got, "docs/a.txt")
	}
}
