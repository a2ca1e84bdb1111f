package tool

import (
	"encoding/json"
	"fmt"
)

// Result is the outcome of a tool execution: {"ok": true, ...payload} or
// {"ok": false, "error": "..."}. All failures are represented as ok=false
// with a human-readable error string so the summarization step can always
// serialize the result.
type Result map[string]any

// OK builds a successful result carrying the given payload fields.
func OK(fields map[string]any) Result {
	r := Result{"ok": true}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

// Failf builds a failed result with a formatted error message.
func Failf(format string, args ...any) Result {
	return Result{"ok": false, "error": fmt.Sprintf(format, args...)}
}

// Ok reports whether the result represents success.
func (r Result) Ok() bool {
	ok, _ := r["ok"].(bool)
	return ok
}

// ErrorMsg returns the error string of a failed result, or "".
func (r Result) ErrorMsg() string {
	msg, _ := r["error"].(string)
	return msg
}

// JSON renders the result as single-line JSON with deterministic key order.
func (r Result) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		// A Result only ever holds JSON-serializable values; this path
		// exists to keep the summarize step total.
		return fmt.Sprintf(`{"ok":false,"error":"unserializable result: %v"}`, err)
	}
	return string(data)
}
