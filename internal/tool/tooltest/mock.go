// Package tooltest provides test doubles for the tool package.
package tooltest

import (
	"context"

	"github.com/mvaldes/mando/internal/tool"
)

// ScriptedApprover is a deterministic Approver for tests. Answers and
// tokens are consumed in order; when a script runs out, the zero value is
// returned (refusal).
type ScriptedApprover struct {
	Answers []bool
	Tokens  []string

	// Requests records every confirmation request received.
	Requests []tool.ApprovalRequest
	// Prompts records every token prompt received.
	Prompts []string
}

// Confirm implements tool.Approver.
func (s *ScriptedApprover) Confirm(_ context.Context, req tool.ApprovalRequest) bool {
	s.Requests = append(s.Requests, req)
	if len(s.Answers) == 0 {
		return false
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer
}

// ReadToken implements tool.Approver.
func (s *ScriptedApprover) ReadToken(_ context.Context, prompt string) (string, bool) {
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Tokens) == 0 {
		return "", false
	}
	token := s.Tokens[0]
	s.Tokens = s.Tokens[1:]
	return token, true
}
