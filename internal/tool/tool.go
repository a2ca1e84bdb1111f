// Package tool defines the tool interface, argument schema, execution model,
// and approval gate for mando. Tools are the primary security boundary:
// every action the model requests goes through a registered tool whose
// arguments are validated and whose side effects are path-confined and,
// where flagged, human-approved.
package tool

import (
	"context"
	"time"

	"github.com/mvaldes/mando/internal/security"
	"github.com/mvaldes/mando/internal/workspace"
)

// Scope declares what kind of access a tool requires.
// Every tool must declare at least one scope.
type Scope string

// Scope values for tool access requirements.
const (
	ScopeReadOnly    Scope = "read_only"
	ScopeReadWrite   Scope = "read_write"
	ScopeExec        Scope = "exec"
	ScopeDestructive Scope = "destructive"
)

// Tool is the interface that all mando tools implement.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what the tool does.
	Description() string

	// Params returns the tool's argument schema. Arguments are resolved
	// against it (aliases, defaults, types) before Execute is called.
	Params() Params

	// Scopes returns the access scopes this tool requires.
	// Must return at least one scope.
	Scopes() []Scope

	// NeedsApproval reports whether the tool asks the gate for
	// confirmation before acting.
	NeedsApproval() bool

	// Execute runs the tool. Failures are reported inside the Result,
	// never as a panic or an error crossing this boundary.
	Execute(ctx context.Context, args Args, env Env) Result
}

// Env provides the runtime environment for tool execution. Tools compose
// the workspace guard and the approval gate themselves: each operation
// presents its own resolved target in the approval details.
type Env struct {
	// Workspace confines all filesystem access.
	Workspace *workspace.Workspace

	// Gate handles human confirmation for gated operations.
	Gate *Gate

	// Audit receives security events. May be nil.
	Audit *security.AuditLogger

	// Now overrides time.Now for date-stamped names. Nil means time.Now.
	Now func() time.Time
}

// Clock returns the effective time source.
func (e Env) Clock() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
