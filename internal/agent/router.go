package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mvaldes/mando/internal/tool"
)

// Direct-command patterns, checked in order before any model call. These
// cover the operations that must work deterministically.
var (
	directWriteRe = regexp.MustCompile(`(?i)^\s*crea\s+el\s+archivo\s+(.+?)\s+con\s+el\s+contenido:\s*(.+)\s*$`)
	directListRe  = regexp.MustCompile(`(?i)^\s*lista\s+los\s+archivos\s*$`)
	directReadRe  = regexp.MustCompile(`(?i)^\s*(lee|leer)\s+(.+?)\s*$`)
)

// unquote strips one layer of surrounding double or single quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	s = strings.Trim(s, `'`)
	return s
}

// tryDirectCommand matches the input against the deterministic command
// patterns and, on a hit, executes the tool without consulting the model.
// The second return is false when no pattern matched.
func (a *Agent) tryDirectCommand(ctx context.Context, input string) (string, bool) {
	s := strings.TrimSpace(input)

	if m := directWriteRe.FindStringSubmatch(s); m != nil {
		a.log.Info("router match", "tool", "write_file")
		res := a.execDirect(ctx, "write_file", map[string]any{
			"path":      unquote(m[1]),
			"content":   m[2],
			"overwrite": true,
		})
		if res.Ok() {
			return fmt.Sprintf("✅ Archivo creado en: %v | existe=%v | size=%v bytes",
				res["path"], res["exists"], res["size"]), true
		}
		return fmt.Sprintf("❌ No se pudo crear: %s", res.ErrorMsg()), true
	}

	if directListRe.MatchString(s) {
		a.log.Info("router match", "tool", "list_files")
		res := a.execDirect(ctx, "list_files", nil)
		if !res.Ok() {
			return fmt.Sprintf("Error: %s", res.ErrorMsg()), true
		}
		files, _ := res["files"].([]string)
		if len(files) == 0 {
			return "No hay archivos en el workspace.", true
		}
		return "Archivos:\n" + strings.Join(files, "\n"), true
	}

	if m := directReadRe.FindStringSubmatch(s); m != nil {
		path := unquote(m[2])
		a.log.Info("router match", "tool", "read_file")
		res := a.execDirect(ctx, "read_file", map[string]any{"path": path})
		if res.Ok() {
			return fmt.Sprintf("Contenido de %s:\n%v", path, res["content"]), true
		}
		return fmt.Sprintf("❌ No se pudo leer: %s", res.ErrorMsg()), true
	}

	return "", false
}

// execDirect runs a tool through the registry so routed commands get the
// same argument validation and audit trail as model-requested ones.
func (a *Agent) execDirect(ctx context.Context, name string, args map[string]any) tool.Result {
	raw, err := json.Marshal(args)
	if err != nil {
		return tool.Failf("argumentos inválidos: %v", err)
	}
	res, err := a.registry.Execute(ctx, name, raw, a.env)
	if err != nil {
		return tool.Failf("%v", err)
	}
	return res
}
