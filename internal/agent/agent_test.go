package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvaldes/mando/internal/infer"
	"github.com/mvaldes/mando/internal/tool"
	"github.com/mvaldes/mando/internal/tools"
	"github.com/mvaldes/mando/internal/workspace"
)

// scriptedGen returns canned outputs in order and records the prompts it
// was asked to complete.
type scriptedGen struct {
	outputs []string
	err     error
	prompts []string
}

func (g *scriptedGen) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	i := len(g.prompts) - 1
	if i >= len(g.outputs) {
		return "", errors.New("scripted generator exhausted")
	}
	return g.outputs[i], nil
}

func newTestAgent(t *testing.T, gen Generator) (*Agent, *workspace.Workspace) {
	t.Helper()

	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace.New() error = %v", err)
	}

	registry := tool.NewRegistry()
	if err := tools.RegisterAll(registry, nil); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}

	env := tool.Env{Workspace: ws}
	return New(gen, registry, env, Options{}), ws
}

func TestTurn_DirectWrite(t *testing.T) {
	t.Parallel()

	gen := &scriptedGen{}
	a, ws := newTestAgent(t, gen)

	reply, err := a.Turn(context.Background(), "Crea el archivo notas/idea.txt con el contenido: hola mundo")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if !strings.Contains(reply, "Archivo creado en:") {
		t.Errorf("reply = %q, want creation confirmation", reply)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("model was called %d times for a direct command, want 0", len(gen.prompts))
	}

	data, err := os.ReadFile(filepath.Join(ws.Root, "notas", "idea.txt"))
	if err != nil {
		t.Fatalf("reading created file: %v", err)
	}
	if string(data) != "hola mundo" {
		t.Errorf("file content = %q, want %q", data, "hola mundo")
	}
}

func TestTurn_DirectList_Empty(t *testing.T) {
	t.Parallel()

	gen := &scriptedGen{}
	a, _ := newTestAgent(t, gen)

	reply, err := a.Turn(context.Background(), "lista los archivos")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if reply != "No hay archivos en el workspace." {
		t.Errorf("reply = %q, want empty-workspace message", reply)
	}
}

func TestTurn_DirectRead_QuotedPath(t *testing.T) {
	t.Parallel()

	gen := &scriptedGen{}
	a, ws := newTestAgent(t, gen)

	if err := os.WriteFile(filepath.Join(ws.Root, "nota.txt"), []byte("contenido"), 0o644); err != nil {
		t.Fatal(err)
	}

	reply, err := a.Turn(context.Background(), `lee "nota.txt"`)
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if !strings.Contains(reply, "contenido") {
		t.Errorf("reply = %q, want file content", reply)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("model was called for a direct command")
	}
}

func TestTurn_ReplyAction(t *testing.T) {
	t.Parallel()

	gen := &scriptedGen{outputs: []string{`{"action":"reply","text":"  todo bien  "}`}}
	a, _ := newTestAgent(t, gen)

	reply, err := a.Turn(context.Background(), "¿cómo estás?")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if reply != "todo bien" {
		t.Errorf("reply = %q, want trimmed reply text", reply)
	}
}

func TestTurn_NonJSONOutput_VerbatimReply(t *testing.T) {
	t.Parallel()

	gen := &scriptedGen{outputs: []string{"  Esto no es JSON, es prosa.  "}}
	a, ws := newTestAgent(t, gen)

	reply, err := a.Turn(context.Background(), "cuéntame algo")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if reply != "Esto no es JSON, es prosa." {
		t.Errorf("reply = %q, want verbatim trimmed output", reply)
	}

	// No tool ran: the workspace stays empty.
	entries, err := os.ReadDir(ws.Root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("workspace has %d entries after a prose reply, want 0", len(entries))
	}
}

func TestTurn_ToolDispatchAndSummarize(t *testing.T) {
	t.Parallel()

	gen := &scriptedGen{outputs: []string{
		`{"action":"tool","tool_name":"write_file","args":{"path":"salida/r.txt","content":"datos"}}`,
		`{"action":"reply","text":"Archivo escrito."}`,
	}}
	a, ws := newTestAgent(t, gen)

	reply, err := a.Turn(context.Background(), "guarda datos en salida/r.txt")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if reply != "Archivo escrito." {
		t.Errorf("reply = %q, want the summarize-phase text", reply)
	}

	if _, err := os.Stat(filepath.Join(ws.Root, "salida", "r.txt")); err != nil {
		t.Errorf("tool did not write the file: %v", err)
	}

	if len(gen.prompts) != 2 {
		t.Fatalf("model was called %d times, want 2", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[1], "Resultado de la herramienta (write_file):") {
		t.Errorf("followup prompt missing tool result section:\n%s", gen.prompts[1])
	}
}

func TestTurn_SummarizeFallback(t *testing.T) {
	t.Parallel()

	gen := &scriptedGen{outputs: []string{
		`{"action":"tool","tool_name":"list_files","args":{}}`,
		"no devuelvo json",
	}}
	a, _ := newTestAgent(t, gen)

	reply, err := a.Turn(context.Background(), "qué archivos hay")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if !strings.HasPrefix(reply, "Resultado: {") {
		t.Errorf("reply = %q, want the serialized-result fallback", reply)
	}
	if !strings.Contains(reply, `"ok":true`) {
		t.Errorf("reply = %q, want the raw tool result inside", reply)
	}
}

func TestTurn_UnknownTool(t *testing.T) {
	t.Parallel()

	gen := &scriptedGen{outputs: []string{
		`{"action":"tool","tool_name":"format_disk","args":{}}`,
	}}
	a, _ := newTestAgent(t, gen)

	reply, err := a.Turn(context.Background(), "formatea el disco")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if reply != "No puedo: herramienta desconocida 'format_disk'." {
		t.Errorf("reply = %q, want unknown-tool message", reply)
	}
}

func TestTurn_BadArgs(t *testing.T) {
	t.Parallel()

	gen := &scriptedGen{outputs: []string{
		`{"action":"tool","tool_name":"read_file","args":{"ruta":"x.txt"}}`,
	}}
	a, _ := newTestAgent(t, gen)

	reply, err := a.Turn(context.Background(), "lee algo")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if !strings.HasPrefix(reply, "Error de argumentos para read_file:") {
		t.Errorf("reply = %q, want argument-error message", reply)
	}
}

func TestTurn_UnknownAction(t *testing.T) {
	t.Parallel()

	gen := &scriptedGen{outputs: []string{`{"action":"pensar"}`}}
	a, _ := newTestAgent(t, gen)

	reply, err := a.Turn(context.Background(), "haz algo raro")
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if reply != "No entendí la acción solicitada." {
		t.Errorf("reply = %q, want unknown-action message", reply)
	}
}

func TestTurn_GeneratorFailureAborts(t *testing.T) {
	t.Parallel()

	gen := &scriptedGen{err: infer.ErrUnavailable}
	a, _ := newTestAgent(t, gen)

	_, err := a.Turn(context.Background(), "hola")
	if !errors.Is(err, infer.ErrUnavailable) {
		t.Fatalf("Turn() error = %v, want ErrUnavailable", err)
	}
}

func TestTurn_MemoryFlowsIntoPrompt(t *testing.T) {
	t.Parallel()

	gen := &scriptedGen{outputs: []string{
		`{"action":"reply","text":"me llamo mando"}`,
		`{"action":"reply","text":"ya te lo dije"}`,
	}}
	a, _ := newTestAgent(t, gen)
	ctx := context.Background()

	if _, err := a.Turn(ctx, "¿cómo te llamas?"); err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if _, err := a.Turn(ctx, "repítelo"); err != nil {
		t.Fatalf("Turn() error = %v", err)
	}

	second := gen.prompts[1]
	if !strings.Contains(second, "Usuario: ¿cómo te llamas?") {
		t.Errorf("second prompt missing prior user line:\n%s", second)
	}
	if !strings.Contains(second, "Agente: me llamo mando") {
		t.Errorf("second prompt missing prior agent line:\n%s", second)
	}
}

func TestGeneratorFunc(t *testing.T) {
	t.Parallel()

	var gen Generator = GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		return "eco: " + prompt, nil
	})
	out, err := gen.Generate(context.Background(), "x")
	if err != nil || out != "eco: x" {
		t.Errorf("Generate() = %q, %v", out, err)
	}
}
