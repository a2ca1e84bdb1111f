// Package tools implements the built-in mando tools: sandboxed file
// operations, whitelisted process launch, folder organization, text search,
// and project scaffolding. Semantics mirror the agent protocol: every
// failure is a Result with ok=false, never an error crossing the registry
// boundary, and every path goes through the workspace guard before any I/O.
package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mvaldes/mando/internal/tool"
	"github.com/mvaldes/mando/internal/workspace"
)

const cancelledMsg = "Acción cancelada por el usuario."

// resolveOrFail maps a PathGuard failure to the user-facing result message.
func resolveOrFail(env tool.Env, rel string) (string, tool.Result) {
	abs, err := env.Workspace.Resolve(rel)
	if err != nil {
		if errors.Is(err, workspace.ErrPathEscape) {
			return "", tool.Failf("Ruta inválida: fuera del workspace.")
		}
		return "", tool.Failf("Ruta inválida: %v", err)
	}
	return abs, nil
}

// WriteFile creates or overwrites a file inside the workspace and verifies
// the write by reading size and existence back from disk.
type WriteFile struct{}

func (WriteFile) Name() string { return "write_file" }

func (WriteFile) Description() string {
	return "Escribe un archivo de texto dentro del workspace"
}

func (WriteFile) Params() tool.Params {
	return tool.Params{
		{Name: "path", Kind: tool.KindString, Required: true},
		{Name: "content", Kind: tool.KindString, Required: true},
		{Name: "overwrite", Kind: tool.KindBool, Default: false},
	}
}

func (WriteFile) Scopes() []tool.Scope { return []tool.Scope{tool.ScopeReadWrite} }

func (WriteFile) NeedsApproval() bool { return true }

func (WriteFile) Execute(ctx context.Context, args tool.Args, env tool.Env) tool.Result {
	abs, fail := resolveOrFail(env, args.String("path"))
	if fail != nil {
		return fail
	}
	overwrite := args.Bool("overwrite")

	if _, err := os.Stat(abs); err == nil && !overwrite {
		return tool.Failf("El archivo ya existe. Usa overwrite=true si quieres sobrescribir.")
	}

	if !env.Gate.Confirm(ctx, "WRITE_FILE", fmt.Sprintf("%s (overwrite=%v)", abs, overwrite)) {
		return tool.Failf(cancelledMsg)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return tool.Failf("No se pudo crear el directorio: %v", err)
	}
	if err := os.WriteFile(abs, []byte(args.String("content")), 0o644); err != nil {
		return tool.Failf("No se pudo escribir: %v", err)
	}

	// Verification read-back: existence and size come from disk, not from
	// the write call.
	info, err := os.Stat(abs)
	if err != nil {
		return tool.OK(map[string]any{"path": abs, "exists": false, "size": 0})
	}
	return tool.OK(map[string]any{"path": abs, "exists": true, "size": info.Size()})
}

// ReadFile returns a file's content, truncated with a marker beyond
// max_chars.
type ReadFile struct{}

// truncationMarker is appended when read_file cuts content at max_chars.
const truncationMarker = "\n... (recortado)"

func (ReadFile) Name() string { return "read_file" }

func (ReadFile) Description() string {
	return "Lee un archivo de texto del workspace"
}

func (ReadFile) Params() tool.Params {
	return tool.Params{
		{Name: "path", Kind: tool.KindString, Required: true},
		{Name: "max_chars", Kind: tool.KindInt, Default: 6000},
	}
}

func (ReadFile) Scopes() []tool.Scope { return []tool.Scope{tool.ScopeReadOnly} }

func (ReadFile) NeedsApproval() bool { return false }

func (ReadFile) Execute(_ context.Context, args tool.Args, env tool.Env) tool.Result {
	abs, fail := resolveOrFail(env, args.String("path"))
	if fail != nil {
		return fail
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return tool.Failf("Archivo no existe.")
	}

	// Invalid byte sequences become replacement runes, so binary junk
	// never reaches the console or the model verbatim.
	content := strings.ToValidUTF8(string(data), "�")
	if maxChars := args.Int("max_chars"); maxChars > 0 {
		runes := []rune(content)
		if len(runes) > maxChars {
			content = string(runes[:maxChars]) + truncationMarker
		}
	}

	return tool.OK(map[string]any{"path": abs, "content": content})
}

// ListFiles lists all files under a workspace subdirectory, recursively.
type ListFiles struct{}

// listFilesCap bounds the number of entries returned; the true total count
// is always reported alongside.
const listFilesCap = 500

func (ListFiles) Name() string { return "list_files" }

func (ListFiles) Description() string {
	return "Lista recursivamente los archivos del workspace"
}

func (ListFiles) Params() tool.Params {
	return tool.Params{
		{Name: "subdir", Kind: tool.KindString, Default: ""},
	}
}

func (ListFiles) Scopes() []tool.Scope { return []tool.Scope{tool.ScopeReadOnly} }

func (ListFiles) NeedsApproval() bool { return false }

func (ListFiles) Execute(_ context.Context, args tool.Args, env tool.Env) tool.Result {
	base, fail := resolveOrFail(env, args.String("subdir"))
	if fail != nil {
		return fail
	}
	info, err := os.Stat(base)
	if err != nil {
		return tool.Failf("Directorio no existe.")
	}
	if !info.IsDir() {
		return tool.Failf("No es un directorio.")
	}

	var files []string
	_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // concurrent modification: a stale view is accepted
		}
		if d.Type().IsRegular() {
			files = append(files, env.Workspace.Rel(path))
		}
		return nil
	})
	slices.Sort(files)

	count := len(files)
	if count > listFilesCap {
		files = files[:listFilesCap]
	}

	return tool.OK(map[string]any{"files": files, "count": count})
}

// DeleteFile removes a regular file after the destructive double gate.
type DeleteFile struct{}

func (DeleteFile) Name() string { return "delete_file" }

func (DeleteFile) Description() string {
	return "Borra un archivo del workspace (requiere doble confirmación)"
}

func (DeleteFile) Params() tool.Params {
	return tool.Params{
		{Name: "path", Kind: tool.KindString, Required: true},
	}
}

func (DeleteFile) Scopes() []tool.Scope {
	return []tool.Scope{tool.ScopeReadWrite, tool.ScopeDestructive}
}

func (DeleteFile) NeedsApproval() bool { return true }

func (DeleteFile) Execute(ctx context.Context, args tool.Args, env tool.Env) tool.Result {
	abs, fail := resolveOrFail(env, args.String("path"))
	if fail != nil {
		return fail
	}

	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return tool.Failf("Archivo no existe.")
	}

	if !env.Gate.ConfirmDestructive(ctx, abs) {
		return tool.Failf("Borrado cancelado por el usuario.")
	}

	// Re-stat right before acting: the gate can block for a long time.
	if info, err := os.Stat(abs); err != nil || !info.Mode().IsRegular() {
		return tool.Failf("Archivo no existe.")
	}
	if err := os.Remove(abs); err != nil {
		return tool.Failf("No se pudo borrar: %v", err)
	}

	return tool.OK(map[string]any{"deleted": abs})
}

// RenameFile renames or moves a file inside the workspace.
type RenameFile struct{}

func (RenameFile) Name() string { return "rename_file" }

func (RenameFile) Description() string {
	return "Renombra o mueve un archivo dentro del workspace"
}

func (RenameFile) Params() tool.Params {
	return tool.Params{
		{Name: "src", Kind: tool.KindString, Required: true},
		{Name: "dst", Kind: tool.KindString, Required: true},
		{Name: "overwrite", Kind: tool.KindBool, Default: false},
	}
}

func (RenameFile) Scopes() []tool.Scope { return []tool.Scope{tool.ScopeReadWrite} }

func (RenameFile) NeedsApproval() bool { return true }

func (RenameFile) Execute(ctx context.Context, args tool.Args, env tool.Env) tool.Result {
	src, fail := resolveOrFail(env, args.String("src"))
	if fail != nil {
		return fail
	}
	dst, fail := resolveOrFail(env, args.String("dst"))
	if fail != nil {
		return fail
	}
	overwrite := args.Bool("overwrite")

	if info, err := os.Stat(src); err != nil || !info.Mode().IsRegular() {
		return tool.Failf("Archivo origen no existe.")
	}
	if _, err := os.Stat(dst); err == nil && !overwrite {
		return tool.Failf("Destino ya existe. Usa overwrite=true para reemplazar.")
	}

	if !env.Gate.Confirm(ctx, "RENAME_FILE", fmt.Sprintf("%s -> %s (overwrite=%v)", src, dst, overwrite)) {
		return tool.Failf(cancelledMsg)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return tool.Failf("No se pudo crear el directorio destino: %v", err)
	}
	// Remove the destination first so the rename does not depend on
	// platform-specific overwrite behavior.
	if overwrite {
		if _, err := os.Stat(dst); err == nil {
			if err := os.Remove(dst); err != nil {
				return tool.Failf("No se pudo reemplazar el destino: %v", err)
			}
		}
	}
	if err := os.Rename(src, dst); err != nil {
		return tool.Failf("No se pudo renombrar: %v", err)
	}

	return tool.OK(map[string]any{"from": src, "to": dst})
}
