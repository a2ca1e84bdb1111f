package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mvaldes/mando/internal/tool"
	"github.com/mvaldes/mando/internal/tool/tooltest"
	"github.com/mvaldes/mando/internal/workspace"
)

// openEnv returns an execution environment with a fresh workspace and a
// disabled gate (every confirmation passes).
func openEnv(t *testing.T) tool.Env {
	t.Helper()
	w, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	return tool.Env{Workspace: w, Gate: tool.NewGate(nil, false, nil)}
}

// gatedEnv returns an environment whose gate consumes the scripted approver.
func gatedEnv(t *testing.T, approver *tooltest.ScriptedApprover) tool.Env {
	t.Helper()
	env := openEnv(t)
	env.Gate = tool.NewGate(approver, true, nil)
	return env
}

// writeWorkspaceFile creates a file with parent directories under the
// workspace root.
func writeWorkspaceFile(t *testing.T, env tool.Env, rel, content string) string {
	t.Helper()
	abs := filepath.Join(env.Workspace.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return abs
}

func mustOK(t *testing.T, r tool.Result) tool.Result {
	t.Helper()
	if !r.Ok() {
		t.Fatalf("unexpected failure: %s", r.JSON())
	}
	return r
}

func mustFail(t *testing.T, r tool.Result) tool.Result {
	t.Helper()
	if r.Ok() {
		t.Fatalf("expected failure, got: %s", r.JSON())
	}
	return r
}
