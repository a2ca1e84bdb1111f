package tools

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvaldes/mando/internal/tool"
)

// extGroups maps category folder names to the extensions they collect.
// Files with no matching group land in otherGroup.
var extGroups = map[string][]string{
	"imagenes": {".png", ".jpg", ".jpeg", ".webp", ".gif", ".bmp"},
	"audio":    {".mp3", ".wav", ".aac", ".m4a", ".ogg"},
	"video":    {".mp4", ".mov", ".mkv", ".avi", ".webm"},
	"docs":     {".txt", ".md", ".pdf", ".docx", ".xlsx", ".pptx"},
	"code":     {".py", ".js", ".ts", ".html", ".css", ".json"},
}

const otherGroup = "otros"

// groupFor returns the category folder for a file extension.
func groupFor(ext string) string {
	ext = strings.ToLower(ext)
	for group, exts := range extGroups {
		for _, e := range exts {
			if e == ext {
				return group
			}
		}
	}
	return otherGroup
}

// OrganizeFolder sorts the top-level files of a directory into category
// subfolders by extension. Running it twice is a no-op on the second run:
// files already in their category folder are not top-level entries anymore,
// and a file whose destination equals its current path is skipped.
type OrganizeFolder struct{}

// movedListCap bounds the moved-files detail in the result; moved_count is
// always the full number.
const movedListCap = 50

func (OrganizeFolder) Name() string { return "organize_folder" }

func (OrganizeFolder) Description() string {
	return "Ordena los archivos de una carpeta en subcarpetas por tipo"
}

func (OrganizeFolder) Params() tool.Params {
	return tool.Params{
		{Name: "subdir", Kind: tool.KindString, Default: ""},
		{Name: "mode", Kind: tool.KindString, Default: "move", Enum: []string{"move", "copy"}},
	}
}

func (OrganizeFolder) Scopes() []tool.Scope { return []tool.Scope{tool.ScopeReadWrite} }

func (OrganizeFolder) NeedsApproval() bool { return true }

func (OrganizeFolder) Execute(ctx context.Context, args tool.Args, env tool.Env) tool.Result {
	base, fail := resolveOrFail(env, args.String("subdir"))
	if fail != nil {
		return fail
	}
	mode := args.String("mode")

	info, err := os.Stat(base)
	if err != nil {
		return tool.Failf("Directorio no existe.")
	}
	if !info.IsDir() {
		return tool.Failf("No es un directorio.")
	}

	if !env.Gate.Confirm(ctx, "ORGANIZE_FOLDER", fmt.Sprintf("%s (mode=%s)", base, mode)) {
		return tool.Failf(cancelledMsg)
	}

	for group := range extGroups {
		if err := os.MkdirAll(filepath.Join(base, group), 0o755); err != nil {
			return tool.Failf("No se pudo crear la carpeta %s: %v", group, err)
		}
	}
	if err := os.MkdirAll(filepath.Join(base, otherGroup), 0o755); err != nil {
		return tool.Failf("No se pudo crear la carpeta %s: %v", otherGroup, err)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return tool.Failf("No se pudo leer el directorio: %v", err)
	}

	var moved []map[string]string
	movedCount := 0
	skipped := 0

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		name := entry.Name()
		group := groupFor(filepath.Ext(name))
		src := filepath.Join(base, name)
		dest := filepath.Join(base, group, name)

		if src == dest {
			skipped++
			continue
		}

		// Per-file failures are counted, never fatal to the whole run.
		if err := transferFile(src, dest, mode); err != nil {
			skipped++
			continue
		}

		movedCount++
		if len(moved) < movedListCap {
			moved = append(moved, map[string]string{
				"from": name,
				"to":   filepath.ToSlash(filepath.Join(group, name)),
			})
		}
	}

	if moved == nil {
		moved = []map[string]string{}
	}
	return tool.OK(map[string]any{
		"moved_count": movedCount,
		"skipped":     skipped,
		"moved":       moved,
	})
}

func transferFile(src, dest, mode string) error {
	if mode == "move" {
		return os.Rename(src, dest)
	}
	return copyFile(src, dest)
}

// copyFile copies src to dest preserving the file mode.
func copyFile(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // read-only handle

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
