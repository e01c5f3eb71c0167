package toolloop

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/rickchristie/orchestra"
)

//go:embed system.tmpl
var systemTemplateContent string

// DefaultInstruction is the fixed tool-use instruction placed after the agent persona.
const DefaultInstruction = `You can call tools to help answer the user's request. ` +
	`Call a tool whenever it gives a more reliable result than working it out yourself. ` +
	`If a tool returns an error, read it and decide how to proceed. ` +
	`Once you have everything you need, reply with the final answer and no tool calls.`

// SystemPromptData is passed to the system prompt template.
type SystemPromptData struct {
	// Persona is the selected agent's persona.
	Persona string

	// Instruction is the fixed tool-use instruction.
	Instruction string

	// Tools lists the tools offered to the model.
	Tools []orchestra.ToolSpec
}

// DefaultSystemTemplate renders the persona, the instruction and a short tool list.
// Replace it with Loop.WithSystemTemplate.
var DefaultSystemTemplate = template.Must(
	template.New("toolloop_system").Parse(systemTemplateContent),
)

// ExecuteTemplate executes tmpl with data and returns the result.
func ExecuteTemplate(tmpl *template.Template, data SystemPromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
