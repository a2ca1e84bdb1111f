// Package console is the terminal surface: styled status lines, the REPL
// reader, and the interactive approval prompts.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Render("[INFO] ")
	okLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("[OK] ")
	warnLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render("[WARN] ")
	errLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("[ERROR] ")
	userLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Render("Tú: ")
	aiLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Render("IA: ")
)

// Console writes styled lines and reads user input.
type Console struct {
	out     io.Writer
	scanner *bufio.Scanner
}

// New creates a console over the given streams. Nil defaults to stdin/stdout.
func New(in io.Reader, out io.Writer) *Console {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out, scanner: bufio.NewScanner(in)}
}

// Info prints an informational status line.
func (c *Console) Info(format string, args ...any) { c.line(infoLabel, format, args...) }

// OK prints a success status line.
func (c *Console) OK(format string, args ...any) { c.line(okLabel, format, args...) }

// Warn prints a warning status line.
func (c *Console) Warn(format string, args ...any) { c.line(warnLabel, format, args...) }

// Error prints an error status line.
func (c *Console) Error(format string, args ...any) { c.line(errLabel, format, args...) }

// User echoes the user's input line.
func (c *Console) User(msg string) { fmt.Fprintln(c.out, userLabel+msg) }

// AI prints the agent's reply.
func (c *Console) AI(msg string) { fmt.Fprintln(c.out, aiLabel+msg) }

func (c *Console) line(label, format string, args ...any) {
	fmt.Fprintf(c.out, label+format+"\n", args...)
}

// ReadLine shows the user prompt and reads one input line. The second
// return is false on EOF or a read error.
func (c *Console) ReadLine() (string, bool) {
	fmt.Fprint(c.out, userLabel)
	if !c.scanner.Scan() {
		return "", false
	}
	return c.scanner.Text(), true
}
