// Package models adapts language-model clients to orchestra.Model.
//
// [LCGWrapper] wraps any LangChainGo llms.Model (OpenAI, Ollama, Anthropic, ...):
//
//	llm, _ := openai.New(
//	    openai.WithBaseURL("http://localhost:11434/v1"),
//	    openai.WithToken("ollama"),
//	)
//	model := models.NewLCGWrapper(llm).WithModelName("gpt-oss:20b")
//
// [Guard] adds a circuit breaker and a rate limit in front of any orchestra.Model.
package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/schema"
	"github.com/tmc/langchaingo/llms"
)

// LCGWrapper wraps an llms.Model and implements orchestra.Model.
//
// Messages are converted to llms.MessageContent and offered tools to llms.Tool. A
// requested output schema is rendered into the system prompt, switches the provider to
// JSON mode and is checked against the reply. Tool calls in the reply are decoded back
// into ToolCallRequests; calls without an ID get a fresh one.
type LCGWrapper struct {
	model       llms.Model
	modelName   string
	callOptions []llms.CallOption
	newID       func() string
}

// NewLCGWrapper creates a new LCGWrapper wrapping the given llms.Model.
func NewLCGWrapper(model llms.Model) *LCGWrapper {
	return &LCGWrapper{
		model: model,
		newID: uuid.NewString,
	}
}

// WithModelName selects the provider model per call, so one client can serve several
// models. Returns the model for chaining.
func (m *LCGWrapper) WithModelName(name string) *LCGWrapper {
	m.modelName = name
	return m
}

// WithCallOptions adds options, such as llms.WithTemperature, to every call.
func (m *LCGWrapper) WithCallOptions(opts ...llms.CallOption) *LCGWrapper {
	m.callOptions = append(m.callOptions, opts...)
	return m
}

// ModelName returns the model name set with WithModelName.
func (m *LCGWrapper) ModelName() string {
	return m.modelName
}

// Unwrap returns the underlying llms.Model.
func (m *LCGWrapper) Unwrap() llms.Model {
	return m.model
}

// Invoke implements orchestra.Model.
func (m *LCGWrapper) Invoke(
	ctx context.Context,
	messages []orchestra.Message,
	opts ...orchestra.InvokeOption,
) (*orchestra.Message, error) {
	o := orchestra.ApplyInvokeOptions(opts...)

	var output *schema.Schema
	if o.Schema != nil {
		var err error
		if output, err = schema.Compile(o.Schema); err != nil {
			return nil, fmt.Errorf("models: output schema: %w", err)
		}
		instruction, err := SchemaInstruction(o.Schema)
		if err != nil {
			return nil, fmt.Errorf("models: output schema: %w", err)
		}
		messages = withInstruction(messages, instruction)
	}

	content, err := ToMessageContent(messages)
	if err != nil {
		return nil, err
	}

	callOpts := make([]llms.CallOption, 0, len(m.callOptions)+3)
	if m.modelName != "" {
		callOpts = append(callOpts, llms.WithModel(m.modelName))
	}
	callOpts = append(callOpts, m.callOptions...)
	if len(o.Tools) > 0 {
		callOpts = append(callOpts, llms.WithTools(ToLLMTools(o.Tools)))
	}
	if o.Schema != nil {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	resp, err := m.model.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, orchestra.ErrEmptyResponse
	}
	msg, err := m.fromChoice(resp.Choices[0])
	if err != nil || output == nil || msg.HasToolCalls() {
		return msg, err
	}
	if _, err := output.DecodeJSON(msg.Content); err != nil {
		return nil, &orchestra.SchemaMismatchError{Content: msg.Content, Err: err}
	}
	msg.Content = schema.TrimFence(msg.Content)
	return msg, nil
}

// SchemaInstruction renders the system prompt instruction that asks for a reply
// conforming to raw.
func SchemaInstruction(raw map[string]any) (string, error) {
	doc, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return "", err
	}
	return "Respond with a single JSON document that conforms to the JSON Schema below. " +
		"Do not wrap it in markdown and do not add any other text.\n\n" + string(doc), nil
}

// withInstruction appends instruction to the leading system message, or prepends one.
func withInstruction(messages []orchestra.Message, instruction string) []orchestra.Message {
	out := make([]orchestra.Message, 0, len(messages)+1)
	if len(messages) > 0 && messages[0].Role == orchestra.RoleSystem {
		first := messages[0]
		first.Content = strings.TrimSpace(first.Content + "\n\n" + instruction)
		out = append(out, first)
		return append(out, messages[1:]...)
	}
	out = append(out, orchestra.SystemMessage(instruction))
	return append(out, messages...)
}

// ToMessageContent converts orchestra messages to the LangChainGo representation.
func ToMessageContent(messages []orchestra.Message) ([]llms.MessageContent, error) {
	out := make([]llms.MessageContent, 0, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case orchestra.RoleSystem:
			out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, msg.Content))
		case orchestra.RoleUser:
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))
		case orchestra.RoleAssistant:
			mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if msg.Content != "" || len(msg.ToolCalls) == 0 {
				mc.Parts = append(mc.Parts, llms.TextContent{Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				args, err := json.Marshal(nonNilArgs(call.Arguments))
				if err != nil {
					return nil, fmt.Errorf("models: message %d: tool call %q: %w", i, call.Name, err)
				}
				mc.Parts = append(mc.Parts, llms.ToolCall{
					ID:   call.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      call.Name,
						Arguments: string(args),
					},
				})
			}
			out = append(out, mc)
		case orchestra.RoleTool:
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: msg.ToolCallID,
					Name:       msg.Name,
					Content:    msg.Content,
				}},
			})
		default:
			return nil, fmt.Errorf("models: message %d: unsupported role %q", i, msg.Role)
		}
	}
	return out, nil
}

// ToLLMTools converts tool specs to LangChainGo function tools.
func ToLLMTools(specs []orchestra.ToolSpec) []llms.Tool {
	tools := make([]llms.Tool, len(specs))
	for i, spec := range specs {
		params := spec.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		tools[i] = llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  params,
			},
		}
	}
	return tools
}

func (m *LCGWrapper) fromChoice(choice *llms.ContentChoice) (*orchestra.Message, error) {
	calls := choice.ToolCalls
	if len(calls) == 0 && choice.FuncCall != nil {
		calls = []llms.ToolCall{{Type: "function", FunctionCall: choice.FuncCall}}
	}

	reqs := make([]orchestra.ToolCallRequest, 0, len(calls))
	for _, call := range calls {
		if call.FunctionCall == nil {
			continue
		}
		args, err := decodeArguments(call.FunctionCall.Arguments)
		if err != nil {
			return nil, fmt.Errorf("models: tool call %q: invalid arguments: %w", call.FunctionCall.Name, err)
		}
		id := call.ID
		if id == "" {
			id = m.newID()
		}
		reqs = append(reqs, orchestra.ToolCallRequest{
			ID:        id,
			Name:      call.FunctionCall.Name,
			Arguments: args,
		})
	}

	msg := orchestra.AssistantMessage(choice.Content, reqs...)
	if len(reqs) == 0 {
		msg.ToolCalls = nil
	}
	return &msg, nil
}

func decodeArguments(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func nonNilArgs(args map[string]any) map[string]any {
	if args == nil {
		return map[string]any{}
	}
	return args
}

// Compile-time check that LCGWrapper implements orchestra.Model.
var _ orchestra.Model = (*LCGWrapper)(nil)
