// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for mando.
package config

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Inference configures the model endpoint.
	Inference InferenceConfig `yaml:"inference"`

	// Workspace confines all tool filesystem access.
	Workspace WorkspaceConfig `yaml:"workspace"`

	// Approval controls the human confirmation gate.
	Approval ApprovalConfig `yaml:"approval"`

	// Apps is the closed whitelist of launchable applications, keyed by
	// the app_key the model uses.
	Apps map[string]AppConfig `yaml:"apps,omitempty"`

	// Memory configures the conversation history.
	Memory MemoryConfig `yaml:"memory"`

	// Audit configures the security event log.
	Audit AuditConfig `yaml:"audit"`
}

// InferenceConfig holds the model endpoint settings.
type InferenceConfig struct {
	// URL is the generate endpoint (Ollama-style).
	URL string `yaml:"url"`

	// Model is the model name sent with every request.
	Model string `yaml:"model"`

	// TimeoutSeconds bounds each request attempt.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Retries is how many times a failed request is retried.
	Retries int `yaml:"retries"`
}

// WorkspaceConfig holds the sandbox settings.
type WorkspaceConfig struct {
	// Root is the directory all tool paths resolve under. Created on
	// startup if missing.
	Root string `yaml:"root"`
}

// ApprovalConfig controls the confirmation gate.
type ApprovalConfig struct {
	// Required enables interactive confirmation for gated tools.
	Required bool `yaml:"required"`
}

// AppConfig is one whitelisted application.
type AppConfig struct {
	// Command is the argv to spawn; never passed through a shell.
	Command []string `yaml:"command"`

	// Description is shown in approval prompts and the model prompt.
	Description string `yaml:"description,omitempty"`
}

// MemoryConfig configures conversation history.
type MemoryConfig struct {
	// MaxTurns bounds the history window rendered into the prompt.
	MaxTurns int `yaml:"max_turns"`

	// Path is the SQLite history database. Empty disables persistence.
	Path string `yaml:"path,omitempty"`
}

// AuditConfig configures the JSONL security event log.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path is the JSONL file audit events are appended to.
	Path string `yaml:"path,omitempty"`
}
