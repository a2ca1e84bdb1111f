package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mvaldes/mando/internal/history"
	"github.com/mvaldes/mando/internal/security"
	"github.com/mvaldes/mando/internal/tool"
)

// Generator produces model output for a prompt. *infer.Client implements
// it; tests substitute a function.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Agent runs conversation turns: deterministic routing first, then the
// two-phase model protocol with tool dispatch in between.
type Agent struct {
	gen       Generator
	registry  *tool.Registry
	env       tool.Env
	window    *Window
	store     *history.Store
	sessionID string
	system    string
	audit     *security.AuditLogger
	log       *slog.Logger
}

// Options configures optional Agent collaborators.
type Options struct {
	// MemoryTurns bounds the prompt history window. Zero means the default.
	MemoryTurns int

	// Store persists turns across restarts. Nil disables persistence.
	Store *history.Store

	// SessionID identifies this conversation in the store and audit log.
	// Empty means a fresh random ID.
	SessionID string

	// AppKeys lists the launchable application keys for the prompt rules.
	AppKeys []string

	// Audit receives turn-level events. Nil disables.
	Audit *security.AuditLogger

	// Logger receives operational logs. Nil discards.
	Logger *slog.Logger
}

// New assembles an agent over a generator, a tool registry, and the
// execution environment the tools run in.
func New(gen Generator, registry *tool.Registry, env tool.Env, opts Options) *Agent {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &Agent{
		gen:       gen,
		registry:  registry,
		env:       env,
		window:    NewWindow(opts.MemoryTurns),
		store:     opts.Store,
		sessionID: sessionID,
		system:    systemInstructions(env.Workspace.Root, registry.Describe(), opts.AppKeys),
		audit:     opts.Audit,
		log:       logger,
	}
}

// SessionID returns the conversation identifier.
func (a *Agent) SessionID() string { return a.sessionID }

// Turn processes one user input and returns the reply. Tool failures,
// unknown tools, and malformed model output all become user-visible text;
// only an unreachable model (or a cancelled context) is returned as an
// error and aborts the turn.
func (a *Agent) Turn(ctx context.Context, input string) (string, error) {
	reply, err := a.turn(ctx, input)
	if err != nil {
		return "", err
	}
	a.remember(ctx, input, reply)
	return reply, nil
}

func (a *Agent) turn(ctx context.Context, input string) (string, error) {
	if reply, handled := a.tryDirectCommand(ctx, input); handled {
		a.audit.Log(security.AuditEvent{
			Type:      security.EventDirectCommand,
			SessionID: a.sessionID,
			Detail:    input,
		})
		return reply, nil
	}

	raw, err := a.generate(ctx, buildPrompt(a.system, a.window.Lines(), input))
	if err != nil {
		return "", err
	}

	act, ok := ParseAction(raw)
	if !ok {
		a.log.Warn("model output is not a protocol action, replying verbatim")
		return strings.TrimSpace(raw), nil
	}

	switch act.Action {
	case ActionReply:
		return strings.TrimSpace(act.Text), nil

	case ActionTool:
		return a.dispatch(ctx, input, act)

	default:
		return "No entendí la acción solicitada.", nil
	}
}

// dispatch executes the requested tool and runs the summarize phase over
// its result.
func (a *Agent) dispatch(ctx context.Context, input string, act *Action) (string, error) {
	a.log.Info("executing tool", "tool", act.ToolName)

	result, err := a.registry.Execute(ctx, act.ToolName, act.Args, a.env)
	switch {
	case errors.Is(err, tool.ErrToolNotFound):
		return fmt.Sprintf("No puedo: herramienta desconocida '%s'.", act.ToolName), nil
	case errors.Is(err, tool.ErrBadArgs):
		return fmt.Sprintf("Error de argumentos para %s: %v", act.ToolName, err), nil
	case err != nil:
		return fmt.Sprintf("Error ejecutando %s: %v", act.ToolName, err), nil
	}

	resultJSON := result.JSON()

	raw, err := a.generate(ctx, followupPrompt(a.system, input, act.ToolName, resultJSON))
	if err != nil {
		return "", err
	}

	if act2, ok := ParseAction(raw); ok && act2.Action == ActionReply {
		return strings.TrimSpace(act2.Text), nil
	}

	// The user always gets the outcome, even when the summarize phase
	// produced nothing usable.
	return "Resultado: " + resultJSON, nil
}

func (a *Agent) generate(ctx context.Context, prompt string) (string, error) {
	out, err := a.gen.Generate(ctx, prompt)
	a.audit.Log(security.AuditEvent{
		Type:      security.EventInference,
		SessionID: a.sessionID,
		Detail:    fmt.Sprintf("prompt_len=%d ok=%v", len(prompt), err == nil),
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// remember records the exchange in the prompt window and, when a store is
// configured, in the persistent log. Persistence failures are logged and
// swallowed: history must never break a turn.
func (a *Agent) remember(ctx context.Context, input, reply string) {
	a.window.Append("Usuario: " + input)
	a.window.Append("Agente: " + reply)

	if a.store == nil {
		return
	}
	if err := a.store.Append(ctx, a.sessionID, history.Turn{Role: "user", Content: input}); err != nil {
		a.log.Warn("history append failed", "error", err)
		return
	}
	if err := a.store.Append(ctx, a.sessionID, history.Turn{Role: "assistant", Content: reply}); err != nil {
		a.log.Warn("history append failed", "error", err)
	}
}

// RestoreWindow reloads the prompt window from the persistent store, used
// when resuming a session.
func (a *Agent) RestoreWindow(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	turns, err := a.store.Recent(ctx, a.sessionID, a.window.max)
	if err != nil {
		return err
	}
	for _, t := range turns {
		label := "Usuario"
		if t.Role == "assistant" {
			label = "Agente"
		}
		a.window.Append(label + ": " + t.Content)
	}
	return nil
}
