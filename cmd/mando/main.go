// Package main is the entry point for the mando CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mvaldes/mando/internal/agent"
	"github.com/mvaldes/mando/internal/config"
	"github.com/mvaldes/mando/internal/console"
	"github.com/mvaldes/mando/internal/history"
	"github.com/mvaldes/mando/internal/infer"
	"github.com/mvaldes/mando/internal/security"
	"github.com/mvaldes/mando/internal/tool"
	"github.com/mvaldes/mando/internal/tools"
	"github.com/mvaldes/mando/internal/workspace"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mando",
		Short:         "A local command-interpreting agent with sandboxed tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), chatCmd(), configCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("mando %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive agent REPL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			fmt.Println("Configuration is valid.")
			return nil
		},
	})
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	// A local .env can provide OLLAMA_URL, OLLAMA_MODEL, AGENT_WORKSPACE.
	_ = godotenv.Load()

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runChat(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	ws, err := workspace.New(cfg.Workspace.Root)
	if err != nil {
		return err
	}

	var audit *security.AuditLogger
	if cfg.Audit.Enabled {
		f, err := os.OpenFile(cfg.Audit.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer func() { _ = f.Close() }()
		audit = security.NewAuditLogger(security.AuditLoggerConfig{Writer: f})
	}

	registry := tool.NewRegistry()
	registry.SetAuditLogger(audit)
	apps := allowedApps(cfg)
	if err := tools.RegisterAll(registry, apps); err != nil {
		return err
	}

	gate := tool.NewGate(console.NewApprover(), cfg.Approval.Required, audit)
	env := tool.Env{Workspace: ws, Gate: gate, Audit: audit}

	client := infer.New(infer.Config{
		URL:     cfg.Inference.URL,
		Model:   cfg.Inference.Model,
		Timeout: time.Duration(cfg.Inference.TimeoutSeconds) * time.Second,
		Retries: cfg.Inference.Retries,
	}, infer.WithLogger(logger))

	var store *history.Store
	if cfg.Memory.Path != "" {
		store, err = history.Open(cfg.Memory.Path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	a := agent.New(client, registry, env, agent.Options{
		MemoryTurns: cfg.Memory.MaxTurns,
		Store:       store,
		AppKeys:     appKeys(apps),
		Audit:       audit,
		Logger:      logger,
	})

	c := console.New(os.Stdin, os.Stdout)
	c.OK("Agente iniciado.")
	c.Info("Workspace: %s", ws.Root)
	c.Info("Modelo: %s", client.Model())
	c.Info("Tip: Para CREAR archivos usa: 'Crea el archivo notas/idea.txt con el contenido: ...'")
	c.Info("Tip: 'lista los archivos' para verificar.")
	c.Info("Escribe 'salir' para terminar.")

	for {
		input, ok := c.ReadLine()
		if !ok || ctx.Err() != nil {
			c.OK("Cerrando agente.")
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "salir", "exit", "quit":
			c.OK("Cerrando agente.")
			return nil
		}

		reply, err := a.Turn(ctx, input)
		if err != nil {
			c.Error("%v", err)
			continue
		}
		c.AI(reply)
	}
}

func allowedApps(cfg *config.Config) map[string]tools.AllowedApp {
	apps := make(map[string]tools.AllowedApp, len(cfg.Apps))
	for key, app := range cfg.Apps {
		apps[key] = tools.AllowedApp{Command: app.Command, Description: app.Description}
	}
	return apps
}

func appKeys(apps map[string]tools.AllowedApp) []string {
	return tools.NewOpenApp(apps).Keys()
}
