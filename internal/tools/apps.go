package tools

import (
	"context"
	"os/exec"
	"slices"
	"strings"

	"github.com/mvaldes/mando/internal/tool"
)

// AllowedApp is one entry of the closed application whitelist: an argument
// vector plus a human-readable description. Commands are always spawned
// from the vector directly; no shell string is ever built.
type AllowedApp struct {
	Command     []string `yaml:"command"`
	Description string   `yaml:"description"`
}

// OpenApp launches a whitelisted application. The whitelist is fixed at
// construction and never consulted from model input beyond key lookup.
type OpenApp struct {
	apps map[string]AllowedApp
}

// NewOpenApp builds the tool around a closed whitelist.
func NewOpenApp(apps map[string]AllowedApp) OpenApp {
	return OpenApp{apps: apps}
}

func (OpenApp) Name() string { return "open_app" }

func (OpenApp) Description() string {
	return "Abre una aplicación de la lista blanca"
}

func (OpenApp) Params() tool.Params {
	return tool.Params{
		{Name: "app_key", Kind: tool.KindString, Required: true},
	}
}

func (OpenApp) Scopes() []tool.Scope { return []tool.Scope{tool.ScopeExec} }

func (OpenApp) NeedsApproval() bool { return true }

// Keys returns the whitelist keys sorted, for prompts and error messages.
func (t OpenApp) Keys() []string {
	keys := make([]string, 0, len(t.apps))
	for key := range t.apps {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func (t OpenApp) Execute(ctx context.Context, args tool.Args, env tool.Env) tool.Result {
	key := args.String("app_key")
	app, ok := t.apps[key]
	if !ok || len(app.Command) == 0 {
		return tool.Failf("App no permitida. Permitidas: %s", strings.Join(t.Keys(), ", "))
	}

	if !env.Gate.Confirm(ctx, "OPEN_APP", key+" -> "+app.Description) {
		return tool.Failf(cancelledMsg)
	}

	// Argument vector only, detached from the agent's lifetime. exec.Command
	// never involves a shell, so model input cannot inject commands.
	cmd := exec.Command(app.Command[0], app.Command[1:]...) //nolint:gosec // closed whitelist, argv-only
	if err := cmd.Start(); err != nil {
		return tool.Failf("No se pudo abrir %s: %v", key, err)
	}
	// Reap the child in the background; the agent does not wait on apps.
	go func() { _ = cmd.Wait() }()

	return tool.OK(map[string]any{"opened": key, "desc": app.Description})
}
