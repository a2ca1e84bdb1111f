package tools

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mvaldes/mando/internal/tool"
)

// textExts is the closed set of extensions search_text will scan.
var textExts = []string{".txt", ".md", ".py", ".js", ".ts", ".html", ".css", ".json", ".csv", ".log"}

// searchLineCap bounds the length of a matched line in the result.
const searchLineCap = 300

// SearchText scans text-like files under a workspace subdirectory for a
// substring and returns matching lines with 1-based line numbers.
type SearchText struct{}

func (SearchText) Name() string { return "search_text" }

func (SearchText) Description() string {
	return "Busca un texto en los archivos de texto del workspace"
}

func (SearchText) Params() tool.Params {
	return tool.Params{
		{Name: "query", Kind: tool.KindString, Required: true},
		{Name: "subdir", Kind: tool.KindString, Default: ""},
		{Name: "case_sensitive", Kind: tool.KindBool, Default: false},
		{Name: "max_hits", Kind: tool.KindInt, Default: 50},
	}
}

func (SearchText) Scopes() []tool.Scope { return []tool.Scope{tool.ScopeReadOnly} }

func (SearchText) NeedsApproval() bool { return true }

func (SearchText) Execute(ctx context.Context, args tool.Args, env tool.Env) tool.Result {
	base, fail := resolveOrFail(env, args.String("subdir"))
	if fail != nil {
		return fail
	}
	query := args.String("query")
	caseSensitive := args.Bool("case_sensitive")
	maxHits := args.Int("max_hits")

	info, err := os.Stat(base)
	if err != nil {
		return tool.Failf("Directorio no existe.")
	}
	if !info.IsDir() {
		return tool.Failf("No es un directorio.")
	}

	if !env.Gate.Confirm(ctx, "SEARCH_TEXT", fmt.Sprintf("Buscar %q en %s", query, base)) {
		return tool.Failf(cancelledMsg)
	}

	needle := query
	if !caseSensitive {
		needle = strings.ToLower(needle)
	}

	hits := []map[string]any{}
	truncated := false

	_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil || truncated {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !slices.Contains(textExts, strings.ToLower(filepath.Ext(path))) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil // unreadable files are skipped, not fatal
		}

		for idx, line := range strings.Split(string(data), "\n") {
			haystack := line
			if !caseSensitive {
				haystack = strings.ToLower(haystack)
			}
			if !strings.Contains(haystack, needle) {
				continue
			}

			hits = append(hits, map[string]any{
				"file": env.Workspace.Rel(path),
				"line": idx + 1,
				"text": capLine(line),
			})
			if len(hits) >= maxHits {
				truncated = true
				return fs.SkipAll
			}
		}
		return nil
	})

	return tool.OK(map[string]any{
		"query":     query,
		"hits":      hits,
		"truncated": truncated,
	})
}

func capLine(line string) string {
	runes := []rune(line)
	if len(runes) <= searchLineCap {
		return line
	}
	return string(runes[:searchLineCap])
}
