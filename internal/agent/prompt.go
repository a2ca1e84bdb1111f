package agent

import (
	"fmt"
	"strings"
)

// systemInstructions renders the protocol header the model sees on every
// call: the answer format, the workspace, and the registered tools.
func systemInstructions(workspaceRoot, toolList string, appKeys []string) string {
	var b strings.Builder
	b.WriteString("Eres un asistente con herramientas. SIEMPRE responde con JSON en una sola línea.\n")
	b.WriteString("No inventes acciones.\n\n")
	fmt.Fprintf(&b, "WORKSPACE: %s\n\n", workspaceRoot)
	b.WriteString("Formato:\n")
	b.WriteString(`{ "action": "reply", "text": "..." }` + "\n")
	b.WriteString("o\n")
	b.WriteString(`{ "action": "tool", "tool_name": "...", "args": { ... } }` + "\n\n")
	b.WriteString("Herramientas disponibles:\n")
	b.WriteString(toolList)
	b.WriteString("\nReglas:\n")
	b.WriteString("- Paths siempre relativos al workspace (ej: \"notas/idea.txt\")\n")
	fmt.Fprintf(&b, "- open_app: app_key debe ser una de: %s\n", strings.Join(appKeys, ", "))
	b.WriteString("- delete_file: requiere doble confirmación del usuario\n")
	b.WriteString("- search_text: query obligatorio\n")
	b.WriteString("- create_project_folder: project obligatorio\n")
	b.WriteString("- Sé breve y directo.\n")
	return b.String()
}

// buildPrompt assembles the first-phase prompt: instructions, the bounded
// history window, and the current user line.
func buildPrompt(system string, history []string, userInput string) string {
	return fmt.Sprintf("%s\nHISTORIAL:\n%s\n\nUSUARIO: %s\nRESPUESTA:",
		system, strings.Join(history, "\n"), userInput)
}

// followupPrompt assembles the second-phase prompt: the original request
// plus the serialized tool result, asking for a reply action.
func followupPrompt(system, userInput, toolName, resultJSON string) string {
	return fmt.Sprintf(`%s
El usuario pidió: %s

Resultado de la herramienta (%s):
%s

Ahora responde con:
{ "action": "reply", "text": "..." }
`, system, userInput, toolName, resultJSON)
}
