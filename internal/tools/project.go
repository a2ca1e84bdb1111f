package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvaldes/mando/internal/tool"
	"github.com/mvaldes/mando/internal/workspace"
)

// illegalNameChars are stripped from project names before any path is built.
const illegalNameChars = `<>:"/\|?*`

// sanitizeProjectName removes filesystem-illegal characters and surrounding
// whitespace. An empty result means the name was unusable.
func sanitizeProjectName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if !strings.ContainsRune(illegalNameChars, r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// CreateProjectFolder scaffolds a project directory under proyectos/ with
// the standard subtree. The model is unreliable about the argument name, so
// the schema accepts project_name and folder_name as aliases of project.
type CreateProjectFolder struct{}

func (CreateProjectFolder) Name() string { return "create_project_folder" }

func (CreateProjectFolder) Description() string {
	return "Crea una carpeta de proyecto con la estructura estándar"
}

func (CreateProjectFolder) Params() tool.Params {
	return tool.Params{
		{Name: "project", Kind: tool.KindString, Required: true, Aliases: []string{"project_name", "folder_name"}},
		{Name: "include_date", Kind: tool.KindBool, Default: true},
	}
}

func (CreateProjectFolder) Scopes() []tool.Scope { return []tool.Scope{tool.ScopeReadWrite} }

func (CreateProjectFolder) NeedsApproval() bool { return true }

func (CreateProjectFolder) Execute(ctx context.Context, args tool.Args, env tool.Env) tool.Result {
	clean := sanitizeProjectName(args.String("project"))
	if clean == "" {
		return tool.Failf("Nombre de proyecto inválido.")
	}

	folderName := clean
	if args.Bool("include_date") {
		folderName = env.Clock().Format("2006-01-02") + "_" + clean
	}

	rel := workspace.ProjectRel(folderName)
	abs, fail := resolveOrFail(env, rel)
	if fail != nil {
		return fail
	}

	if !env.Gate.Confirm(ctx, "CREATE_PROJECT_FOLDER", abs) {
		return tool.Failf(cancelledMsg)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return tool.Failf("No se pudo crear la carpeta: %v", err)
	}
	for _, sub := range workspace.ProjectSubdirs {
		if err := os.MkdirAll(filepath.Join(abs, sub), 0o755); err != nil {
			return tool.Failf("No se pudo crear la subcarpeta %s: %v", sub, err)
		}
	}

	return tool.OK(map[string]any{
		"folder":   abs,
		"relative": filepath.ToSlash(rel),
	})
}
