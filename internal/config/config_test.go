package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
version: "1"
inference:
  url: http://localhost:11434/api/generate
  model: qwen2.5:1.5b
  timeout_seconds: 180
  retries: 2
workspace:
  root: /tmp/ws
approval:
  required: true
apps:
  editor:
    command: ["nano", "+1"]
    description: "Editor"
memory:
  max_turns: 6
audit:
  enabled: true
  path: /tmp/audit.jsonl
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mando.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Inference.Model != "qwen2.5:1.5b" {
		t.Errorf("model = %q", cfg.Inference.Model)
	}
	if cfg.Inference.Retries != 2 || cfg.Inference.TimeoutSeconds != 180 {
		t.Errorf("inference = %+v", cfg.Inference)
	}
	if !cfg.Approval.Required {
		t.Error("approval.required = false")
	}
	app, ok := cfg.Apps["editor"]
	if !ok || len(app.Command) != 2 || app.Command[0] != "nano" {
		t.Errorf("apps.editor = %+v", app)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("MANDO_TEST_MODEL", "llama3")

	cfg, err := Load(writeConfig(t, strings.Replace(validYAML,
		"model: qwen2.5:1.5b", "model: ${MANDO_TEST_MODEL}", 1)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Inference.Model != "llama3" {
		t.Errorf("model = %q, want expanded env value", cfg.Inference.Model)
	}
}

func TestLoad_EnvDefault(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, strings.Replace(validYAML,
		"model: qwen2.5:1.5b", "model: ${MANDO_UNSET_VAR:-fallback}", 1)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Inference.Model != "fallback" {
		t.Errorf("model = %q, want the default", cfg.Inference.Model)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, strings.Replace(validYAML,
		"model: qwen2.5:1.5b", "model: ${MANDO_DEFINITELY_UNSET}", 1)))
	if err == nil || !strings.Contains(err.Error(), "unresolved variable: MANDO_DEFINITELY_UNSET") {
		t.Fatalf("Load() error = %v, want unresolved-variable error", err)
	}
}

func TestLoadDefault_Builtin(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Chdir(t.TempDir())

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("builtin defaults do not validate: %v", err)
	}
	if cfg.Inference.Model != "mistral" {
		t.Errorf("model = %q, want OLLAMA_MODEL value", cfg.Inference.Model)
	}
	if cfg.Inference.URL != "http://localhost:11434/api/generate" {
		t.Errorf("url = %q", cfg.Inference.URL)
	}
	if cfg.Memory.MaxTurns != 6 {
		t.Errorf("max_turns = %d, want 6", cfg.Memory.MaxTurns)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Version: "2",
		Apps:    map[string]AppConfig{"vacia": {}},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() = nil, want errors")
	}
	for _, want := range []string{
		"unsupported version",
		"inference.url is required",
		"inference.model is required",
		"timeout_seconds must be positive",
		"workspace.root is required",
		"apps.vacia: command is required",
		"max_turns must be positive",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %q:\n%v", want, err)
		}
	}
}

func TestValidate_AuditNeedsPath(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, strings.Replace(validYAML,
		"path: /tmp/audit.jsonl", "path: \"\"", 1)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "audit.path is required") {
		t.Fatalf("Validate() error = %v, want audit.path error", err)
	}
}
