package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mvaldes/mando/internal/security"
)

// Registry holds registered tools and orchestrates their execution.
// It is instance-based (not global) for better testability. Registration
// happens once at startup; the set is immutable afterwards by convention.
type Registry struct {
	mu          sync.RWMutex
	tools       map[string]Tool
	auditLogger *security.AuditLogger
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// SetAuditLogger configures audit logging for tool executions.
func (r *Registry) SetAuditLogger(logger *security.AuditLogger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auditLogger = logger
}

// Register adds a tool to the registry.
// It returns ErrNoScopes if the tool declares no scopes,
// and ErrDuplicateTool if a tool with the same name is already registered.
func (r *Registry) Register(t Tool) error {
	name := strings.TrimSpace(t.Name())
	if name == "" {
		return ErrEmptyToolName
	}
	if len(t.Scopes()) == 0 {
		return fmt.Errorf("%w: %s", ErrNoScopes, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}

	r.tools[name] = t
	return nil
}

// Get returns the tool with the given name, or ErrToolNotFound.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return t, nil
}

// Names returns all registered tool names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Describe renders one line per tool (name, parameter schema, description),
// sorted by name, for inclusion in the model prompt.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	for _, name := range names {
		t := r.tools[name]
		fmt.Fprintf(&b, "- %s %s: %s", name, t.Params().Schema(), t.Description())
		if t.NeedsApproval() {
			b.WriteString(" (requiere aprobación)")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Execute orchestrates one tool invocation: lookup → audit → argument
// resolution → execution → audit. Only lookup and argument failures are
// returned as errors; everything the tool itself decides is inside the
// Result. Panics in tools are recovered into failed Results.
func (r *Registry) Execute(ctx context.Context, name string, raw json.RawMessage, env Env) (Result, error) {
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	al := r.auditLogger
	r.mu.RUnlock()

	al.Log(security.AuditEvent{
		Type:     security.EventToolCall,
		ToolName: name,
		Detail:   string(raw),
	})

	args, err := t.Params().Resolve(raw)
	if err != nil {
		al.Log(security.AuditEvent{
			Type:     security.EventToolResult,
			ToolName: name,
			Detail:   "argument error: " + err.Error(),
			Metadata: map[string]string{"is_error": "true"},
		})
		return nil, err
	}

	result := runRecovered(ctx, t, args, env)

	al.Log(security.AuditEvent{
		Type:     security.EventToolResult,
		ToolName: name,
		Detail:   result.JSON(),
		Metadata: map[string]string{"is_error": fmt.Sprintf("%v", !result.Ok())},
	})

	return result, nil
}

// runRecovered executes the tool, converting a panic into a failed Result
// so one misbehaving tool cannot kill the turn loop.
func runRecovered(ctx context.Context, t Tool, args Args, env Env) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			result = Failf("panic en %s: %v", t.Name(), rec)
		}
	}()
	return t.Execute(ctx, args, env)
}
