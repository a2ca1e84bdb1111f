package console

import (
	"context"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/mvaldes/mando/internal/tool"
)

// Approver asks the operator for confirmation through interactive forms.
// It implements tool.Approver.
type Approver struct{}

// NewApprover returns the interactive terminal approver.
func NewApprover() *Approver { return &Approver{} }

// Confirm presents a yes/no form for the requested action. Any form
// failure (EOF, ctrl-c, broken terminal) counts as a refusal.
func (Approver) Confirm(ctx context.Context, req tool.ApprovalRequest) bool {
	approved := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("¿Autorizar "+req.ActionLabel+"?").
			Description(req.Details).
			Affirmative("Sí").
			Negative("No").
			Value(&approved),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return false
	}
	return approved
}

// ReadToken prompts for a free-form confirmation token, used by the
// destructive second gate.
func (Approver) ReadToken(ctx context.Context, prompt string) (string, bool) {
	var token string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(strings.TrimSpace(prompt)).
			Value(&token),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return "", false
	}
	return token, true
}
