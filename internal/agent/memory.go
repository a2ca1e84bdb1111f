package agent

// DefaultMemoryTurns is how many recent history lines enter the prompt.
const DefaultMemoryTurns = 6

// Window is the bounded in-process conversation memory. Only the most
// recent lines are rendered into the prompt; older lines are dropped.
type Window struct {
	max   int
	lines []string
}

// NewWindow creates a window keeping the last max lines. Non-positive
// max falls back to DefaultMemoryTurns.
func NewWindow(max int) *Window {
	if max <= 0 {
		max = DefaultMemoryTurns
	}
	return &Window{max: max}
}

// Append records a line, evicting the oldest once the window is full.
func (w *Window) Append(line string) {
	w.lines = append(w.lines, line)
	if len(w.lines) > w.max {
		w.lines = w.lines[len(w.lines)-w.max:]
	}
}

// Lines returns the retained lines in chronological order.
func (w *Window) Lines() []string {
	out := make([]string, len(w.lines))
	copy(out, w.lines)
	return out
}
