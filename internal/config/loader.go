package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// defaultYAML is the built-in configuration used when no file is found.
// It goes through the same expansion path as a real file, so the
// historical environment variables keep working without any config.
const defaultYAML = `
version: "1"
inference:
  url: ${OLLAMA_URL:-http://localhost:11434/api/generate}
  model: ${OLLAMA_MODEL:-qwen2.5:1.5b}
  timeout_seconds: 180
  retries: 2
workspace:
  root: ${AGENT_WORKSPACE:-agente_workspace}
approval:
  required: true
apps:
  notepad:
    command: ["notepad.exe"]
    description: "Bloc de notas"
  calculator:
    command: ["calc.exe"]
    description: "Calculadora"
memory:
  max_turns: 6
audit:
  enabled: false
`

// Load reads a YAML configuration file, expands environment variables,
// and parses it into a Config struct.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return parse(raw, path)
}

// LoadDefault searches the standard locations and loads the first config
// file found: $XDG_CONFIG_HOME/mando/mando.yaml, then ./mando.yaml. When
// neither exists the built-in defaults are used.
func LoadDefault() (*Config, error) {
	for _, path := range searchPaths() {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return parse([]byte(defaultYAML), "<builtin>")
}

func searchPaths() []string {
	var paths []string
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, "mando", "mando.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "mando", "mando.yaml"))
	}
	return append(paths, "mando.yaml")
}

func parse(raw []byte, source string) (*Config, error) {
	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: expanding variables in %s: %w", source, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", source, err)
	}

	return &cfg, nil
}

// expandEnv replaces ${VAR} and ${VAR:-default} patterns in raw YAML bytes.
// Returns an error listing all unresolved variables (no default, no env value).
func expandEnv(raw []byte) ([]byte, error) {
	var errs []error

	result := envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := envPattern.FindSubmatch(match)
		name := string(subs[1])
		hasDefault := len(subs) > 2 && subs[2] != nil
		defaultVal := ""
		if hasDefault {
			defaultVal = string(subs[2])
		}

		value, ok := os.LookupEnv(name)
		if ok {
			return []byte(value)
		}

		if hasDefault {
			return []byte(defaultVal)
		}

		errs = append(errs, fmt.Errorf("unresolved variable: %s", name))
		return match
	})

	return result, errors.Join(errs...)
}
