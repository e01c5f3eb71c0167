package toolloop

import (
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/hooks"
	"github.com/rickchristie/orchestra/toolchain"
)

// DefaultMaxIterations is the default ceiling on reasoning steps.
const DefaultMaxIterations = 10

// ErrInvalidMaxIterations is returned by Run when the ceiling is below one.
var ErrInvalidMaxIterations = errors.New("toolloop: max iterations must be at least 1")

// State is a state of the loop.
type State int

const (
	StateReasoning State = iota
	StateActing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateReasoning:
		return "reasoning"
	case StateActing:
		return "acting"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is the outcome of one run.
type Result struct {
	// Transcript starts with the user request and holds every assistant and tool message.
	// The system prompt is not part of it.
	Transcript *orchestra.Transcript

	// Iterations is the number of reasoning steps performed.
	Iterations int

	// ToolCalls is the number of tool calls executed.
	ToolCalls int

	// FinalAnswer is the content of the final assistant message. Empty unless the run
	// ended because the model requested no tools.
	FinalAnswer string
}

// Loop drives the reason/act cycle. A Loop holds configuration only; every Run has
// its own transcript, so one Loop may serve concurrent runs.
type Loop struct {
	models         orchestra.ModelSet
	chain          *toolchain.Chain
	maxIterations  int
	instruction    string
	systemTemplate *template.Template
	hooks          *hooks.Registry
	callTimeout    time.Duration
	newID          func() string
}

// New creates a loop that resolves agent models from models and executes tools from
// chain. A nil chain offers no tools.
func New(models orchestra.ModelSet, chain *toolchain.Chain) *Loop {
	if chain == nil {
		chain = toolchain.New()
	}
	return &Loop{
		models:         models,
		chain:          chain,
		maxIterations:  DefaultMaxIterations,
		instruction:    DefaultInstruction,
		systemTemplate: DefaultSystemTemplate,
		newID:          uuid.NewString,
	}
}

// WithMaxIterations sets the ceiling on reasoning steps.
func (l *Loop) WithMaxIterations(n int) *Loop {
	l.maxIterations = n
	return l
}

// WithInstruction replaces the fixed tool-use instruction.
func (l *Loop) WithInstruction(instruction string) *Loop {
	l.instruction = instruction
	return l
}

// WithSystemTemplate replaces the system prompt template. It receives SystemPromptData.
func (l *Loop) WithSystemTemplate(tmpl *template.Template) *Loop {
	l.systemTemplate = tmpl
	return l
}

// WithHooks sets the hook registry.
func (l *Loop) WithHooks(h *hooks.Registry) *Loop {
	l.hooks = h
	return l
}

// WithCallTimeout bounds every model call and every tool call. Zero means no bound
// beyond ctx.
func (l *Loop) WithCallTimeout(d time.Duration) *Loop {
	l.callTimeout = d
	return l
}

// MaxIterations returns the configured ceiling.
func (l *Loop) MaxIterations() int {
	return l.maxIterations
}

// Run answers request as agent, calling tools as the model asks.
//
// The returned Result is non-nil whenever the run started, including on error.
func (l *Loop) Run(ctx context.Context, request string, agent orchestra.AgentSpec) (*Result, error) {
	if l.maxIterations < 1 {
		return nil, ErrInvalidMaxIterations
	}
	model, err := l.models.Resolve(agent.ModelRef)
	if err != nil {
		return nil, fmt.Errorf("toolloop: agent %q: %w", agent.Name, err)
	}

	specs := l.chain.Specs()
	system, err := ExecuteTemplate(l.systemTemplate, SystemPromptData{
		Persona:     agent.Persona,
		Instruction: l.instruction,
		Tools:       specs,
	})
	if err != nil {
		return nil, fmt.Errorf("toolloop: system prompt: %w", err)
	}

	var opts []orchestra.InvokeOption
	if len(specs) > 0 {
		opts = append(opts, orchestra.WithTools(specs...))
	}

	transcript := orchestra.NewTranscript(orchestra.UserMessage(request))
	result := &Result{Transcript: transcript}

	state := StateReasoning
	for state != StateDone {
		switch state {
		case StateReasoning:
			if err := ctx.Err(); err != nil {
				return result, err
			}
			result.Iterations++

			messages := append([]orchestra.Message{orchestra.SystemMessage(system)}, transcript.Messages()...)
			reply, err := l.invoke(ctx, model, agent.ModelRef, messages, opts)
			if err != nil {
				return result, fmt.Errorf("toolloop: reasoning step %d: %w", result.Iterations, err)
			}
			transcript.Append(l.normalize(reply))

			last, _ := transcript.Last()
			if !last.HasToolCalls() {
				result.FinalAnswer = last.Content
				state = StateDone
				continue
			}
			if result.Iterations >= l.maxIterations {
				return result, &orchestra.IterationLimitError{
					MaxIterations: l.maxIterations,
					Transcript:    transcript,
				}
			}
			state = StateActing

		case StateActing:
			last, _ := transcript.LastAssistant()
			for _, call := range last.ToolCalls {
				content := l.execute(ctx, result.Iterations, call)
				transcript.Append(orchestra.ToolMessage(call, content))
				result.ToolCalls++
			}
			state = StateReasoning
		}
	}
	return result, nil
}

func (l *Loop) invoke(
	ctx context.Context,
	model orchestra.Model,
	ref string,
	messages []orchestra.Message,
	opts []orchestra.InvokeOption,
) (*orchestra.Message, error) {
	if l.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.callTimeout)
		defer cancel()
	}

	l.hooks.FireBeforeModelCall(ctx, orchestra.BeforeModelCallEvent{
		Component: "toolloop",
		ModelRef:  ref,
		Messages:  messages,
	})
	start := time.Now()
	reply, err := model.Invoke(ctx, messages, opts...)
	l.hooks.FireAfterModelCall(ctx, orchestra.AfterModelCallEvent{
		Component: "toolloop",
		ModelRef:  ref,
		Messages:  messages,
		Response:  reply,
		Duration:  time.Since(start),
		Error:     err,
	})
	return reply, err
}

// normalize turns a model reply into the assistant message stored in the transcript.
// Tool calls without an ID, or reusing an ID from the same turn, get a fresh one.
func (l *Loop) normalize(reply *orchestra.Message) orchestra.Message {
	if reply == nil {
		return orchestra.AssistantMessage("")
	}
	msg := orchestra.AssistantMessage(reply.Content)
	if len(reply.ToolCalls) == 0 {
		return msg
	}

	seen := make(map[string]bool, len(reply.ToolCalls))
	msg.ToolCalls = make([]orchestra.ToolCallRequest, len(reply.ToolCalls))
	for i, call := range reply.ToolCalls {
		if call.ID == "" || seen[call.ID] {
			call.ID = l.newID()
		}
		seen[call.ID] = true
		msg.ToolCalls[i] = call
	}
	return msg
}

// execute runs one tool call and returns the tool message content.
func (l *Loop) execute(ctx context.Context, iteration int, call orchestra.ToolCallRequest) string {
	l.hooks.FireBeforeToolCall(ctx, orchestra.BeforeToolCallEvent{
		Iteration: iteration,
		Call:      call,
	})

	callCtx := ctx
	if l.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, l.callTimeout)
		defer cancel()
	}

	start := time.Now()
	out, err := l.chain.Execute(callCtx, call)
	content := out
	if err != nil {
		content = "Error: " + err.Error()
	}

	l.hooks.FireAfterToolCall(ctx, orchestra.AfterToolCallEvent{
		Iteration: iteration,
		Call:      call,
		Result:    content,
		Duration:  time.Since(start),
		Error:     err,
	})
	return content
}
