package config

import (
	"errors"
	"fmt"
)

// Validate checks the structural validity of a Config. All problems are
// reported at once as a joined error.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if cfg.Inference.URL == "" {
		errs = append(errs, errors.New("config: inference.url is required"))
	}
	if cfg.Inference.Model == "" {
		errs = append(errs, errors.New("config: inference.model is required"))
	}
	if cfg.Inference.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("config: inference.timeout_seconds must be positive"))
	}
	if cfg.Inference.Retries < 0 {
		errs = append(errs, errors.New("config: inference.retries must not be negative"))
	}

	if cfg.Workspace.Root == "" {
		errs = append(errs, errors.New("config: workspace.root is required"))
	}

	for key, app := range cfg.Apps {
		if len(app.Command) == 0 {
			errs = append(errs, fmt.Errorf("config: apps.%s: command is required", key))
		}
	}

	if cfg.Memory.MaxTurns <= 0 {
		errs = append(errs, errors.New("config: memory.max_turns must be positive"))
	}

	if cfg.Audit.Enabled && cfg.Audit.Path == "" {
		errs = append(errs, errors.New("config: audit.path is required when audit is enabled"))
	}

	return errors.Join(errs...)
}
