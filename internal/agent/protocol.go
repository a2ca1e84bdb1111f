// Package agent implements the per-turn conversation loop: direct-command
// routing, prompt assembly, action parsing, tool dispatch, and the
// summarize step that turns tool results back into user-facing text.
package agent

import (
	"encoding/json"
	"strings"

	"github.com/mvaldes/mando/internal/security"
)

// Action kinds the model may emit.
const (
	ActionReply = "reply"
	ActionTool  = "tool"
)

// Action is the single-line JSON protocol the model answers with.
type Action struct {
	Action   string          `json:"action"`
	Text     string          `json:"text,omitempty"`
	ToolName string          `json:"tool_name,omitempty"`
	Args     json.RawMessage `json:"args,omitempty"`
}

// ParseAction interprets raw model output as a protocol action. Output
// that is not a JSON object (or fails size/depth validation) is not an
// error: the caller treats the trimmed text as a plain reply.
func ParseAction(raw string) (*Action, bool) {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "{") {
		return nil, false
	}

	payload := []byte(text)
	if err := security.ValidateActionSize(payload, security.DefaultMaxActionSize); err != nil {
		return nil, false
	}
	if err := security.ValidateJSONDepth(payload, security.DefaultMaxJSONDepth); err != nil {
		return nil, false
	}

	var act Action
	if err := json.Unmarshal(payload, &act); err != nil {
		return nil, false
	}
	return &act, true
}
