package tool

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mvaldes/mando/internal/security"
)

// ApprovalRequest is presented to the operator when a gated tool wants to
// run. It exists only for the duration of one confirmation exchange.
type ApprovalRequest struct {
	// ID uniquely identifies this request.
	ID string

	// ActionLabel names the pending action, e.g. "WRITE_FILE".
	ActionLabel string

	// Details describe the concrete target, e.g. the resolved path.
	Details string
}

// Approver obtains confirmation from the human operator. Implementations
// block until the operator answers; headless runs and tests substitute a
// deterministic stub.
type Approver interface {
	// Confirm presents the pending action and reports whether the operator
	// accepted it. Any malformed or negative answer is a refusal.
	Confirm(ctx context.Context, req ApprovalRequest) bool

	// ReadToken prompts for a free-form token, used by the destructive
	// double-confirmation gate. ok is false when no token could be read.
	ReadToken(ctx context.Context, prompt string) (token string, ok bool)
}

// Gate wraps an Approver with the process-wide approval policy. When
// approval is disabled (headless runs) every confirmation succeeds without
// prompting. A nil *Gate behaves like a disabled one.
type Gate struct {
	approver Approver
	required bool
	audit    *security.AuditLogger
}

// NewGate creates a Gate. approver may be nil only when required is false.
func NewGate(approver Approver, required bool, audit *security.AuditLogger) *Gate {
	return &Gate{approver: approver, required: required, audit: audit}
}

// Confirm asks the operator to approve the labeled action. It returns false
// on refusal or when no approver is available; it never panics or errors.
func (g *Gate) Confirm(ctx context.Context, label, details string) bool {
	if g == nil || !g.required {
		return true
	}
	if g.approver == nil {
		// Approval required but nobody to ask: fail closed.
		return false
	}

	approved := g.approver.Confirm(ctx, ApprovalRequest{
		ID:          uuid.NewString(),
		ActionLabel: label,
		Details:     details,
	})

	detail := "denied"
	if approved {
		detail = "approved"
	}
	g.audit.Log(security.AuditEvent{
		Type:   security.EventApproval,
		Detail: detail + ": " + label + " " + details,
	})

	return approved
}

// ConfirmDestructive runs the two-stage gate for irreversible deletions:
// first a normal confirmation, then an exact case-sensitive retype of the
// target's base name (surrounding whitespace trimmed). Both gates must pass.
func (g *Gate) ConfirmDestructive(ctx context.Context, path string) bool {
	if g == nil || !g.required {
		return true
	}

	if !g.Confirm(ctx, "DELETE_FILE (1/2)", path) {
		return false
	}

	name := filepath.Base(path)
	typed, ok := g.approver.ReadToken(ctx,
		"CONFIRMACIÓN FINAL (2/2): escribe EXACTAMENTE el nombre del archivo a borrar:\n"+name)
	match := ok && strings.TrimSpace(typed) == name

	detail := "second gate failed"
	if match {
		detail = "second gate passed"
	}
	g.audit.Log(security.AuditEvent{
		Type:   security.EventApproval,
		Detail: detail + ": DELETE_FILE " + path,
	})

	return match
}
