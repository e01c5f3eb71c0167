package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/hooks"
	"github.com/rickchristie/orchestra/parser"
)

// DefaultControllerPersona is the controller's system prompt when none is configured.
const DefaultControllerPersona = `You are an Intelligent Agent Controller, a smart routing system that analyzes user queries and selects the most appropriate specialist agent.

Your responsibilities:
- Analyze the user's query to understand what they need
- Consider the strengths and specialties of each available agent
- Select the agent best suited to provide the most helpful response
- Explain your reasoning briefly`

const (
	fieldAgent     = "agent"
	fieldReasoning = "reasoning"
)

var verdictFields = []parser.Field{
	{Name: fieldAgent, Prefix: "SELECTED_AGENT", Guidance: "[agent_name]"},
	{Name: fieldReasoning, Prefix: "REASONING", Guidance: "[1-2 sentences explaining why this agent is the best choice]"},
}

// Model routes by asking a controller model to pick an agent.
//
// The prompt lists every agent's name and specialties and asks for a SELECTED_AGENT
// line and a REASONING line. The verdict is resolved with Registry.Match. A missing or
// unknown agent selects the registry default with Fallback set; the model is never
// asked twice.
type Model struct {
	registry    *orchestra.Registry
	model       orchestra.Model
	modelRef    string
	persona     string
	hooks       *hooks.Registry
	callTimeout time.Duration
}

// NewModel creates a model-mediated router.
func NewModel(registry *orchestra.Registry, model orchestra.Model) *Model {
	return &Model{
		registry: registry,
		model:    model,
		modelRef: "controller",
		persona:  DefaultControllerPersona,
	}
}

// WithPersona sets the controller's system prompt.
func (m *Model) WithPersona(persona string) *Model {
	m.persona = persona
	return m
}

// WithModelRef sets the model name reported to hooks.
func (m *Model) WithModelRef(ref string) *Model {
	m.modelRef = ref
	return m
}

// WithHooks sets the hook registry.
func (m *Model) WithHooks(h *hooks.Registry) *Model {
	m.hooks = h
	return m
}

// WithCallTimeout bounds the controller call. Zero means no bound beyond ctx.
func (m *Model) WithCallTimeout(d time.Duration) *Model {
	m.callTimeout = d
	return m
}

// Prompt returns the user prompt sent to the controller for request.
func (m *Model) Prompt(request string) string {
	agents := m.registry.Agents()

	var sb strings.Builder
	sb.WriteString("You must select the best agent to handle this query.\n\n")
	fmt.Fprintf(&sb, "QUERY: %s\n\n", request)
	sb.WriteString("AVAILABLE AGENTS:\n")
	for i, a := range agents {
		if i > 0 {
			sb.WriteString("\n")
		}
		if a.Title != "" {
			fmt.Fprintf(&sb, "**%s** (%s):\n", a.Name, a.Title)
		} else {
			fmt.Fprintf(&sb, "**%s**:\n", a.Name)
		}
		for _, s := range a.Specialties {
			fmt.Fprintf(&sb, "  - %s\n", s)
		}
	}
	sb.WriteString("\nAnalyze the query and select the most appropriate agent. ")
	sb.WriteString("Respond in this exact format:\n\n")
	sb.WriteString(parser.Describe(verdictFields))
	sb.WriteString("\n\nAgent names to choose from: ")
	sb.WriteString(strings.Join(m.registry.Names(), ", "))
	return sb.String()
}

// Route implements Router.
func (m *Model) Route(ctx context.Context, request string) (*Decision, error) {
	messages := []orchestra.Message{
		orchestra.SystemMessage(m.persona),
		orchestra.UserMessage(m.Prompt(request)),
	}

	resp, err := m.invoke(ctx, messages)
	if err != nil {
		return nil, &orchestra.DispatchError{Strategy: StrategyModel, Err: err}
	}

	var raw string
	if resp != nil {
		raw = resp.Content
	}
	decision := m.resolve(raw)
	m.hooks.FireRoute(ctx, routeEvent(request, decision))
	return decision, nil
}

func (m *Model) invoke(ctx context.Context, messages []orchestra.Message) (*orchestra.Message, error) {
	if m.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.callTimeout)
		defer cancel()
	}

	m.hooks.FireBeforeModelCall(ctx, orchestra.BeforeModelCallEvent{
		Component: "router",
		ModelRef:  m.modelRef,
		Messages:  messages,
	})
	start := time.Now()
	resp, err := m.model.Invoke(ctx, messages)
	m.hooks.FireAfterModelCall(ctx, orchestra.AfterModelCallEvent{
		Component: "router",
		ModelRef:  m.modelRef,
		Messages:  messages,
		Response:  resp,
		Duration:  time.Since(start),
		Error:     err,
	})
	return resp, err
}

// resolve turns the controller reply into a decision. It never fails.
func (m *Model) resolve(raw string) *Decision {
	decision := &Decision{
		RawVerdict: raw,
		Strategy:   StrategyModel,
	}
	def := m.registry.Default()

	res := parser.Parse(raw, verdictFields)
	reasoning := res.GetOr(fieldReasoning, "No reasoning provided")
	label, ok := res.Get(fieldAgent)

	switch {
	case res.Recovered():
		decision.Selected = def
		decision.Fallback = true
		decision.Reasoning = fmt.Sprintf("Parsing failed, defaulting to %s", def.Name)
	case !ok || strings.TrimSpace(label) == "":
		decision.Selected = def
		decision.Fallback = true
		decision.Reasoning = fmt.Sprintf("No valid agent selected, defaulting to %s", def.Name)
	default:
		agent, found := m.registry.Match(label)
		if !found {
			if name, hit := parser.MatchEnum(label, m.namesLongestFirst()...); hit {
				agent, found = m.registry.Lookup(name)
			}
		}
		if !found {
			decision.Selected = def
			decision.Fallback = true
			decision.Reasoning = fmt.Sprintf("Unknown agent %q selected, defaulting to %s", label, def.Name)
			break
		}
		decision.Selected = agent
		decision.Reasoning = reasoning
	}
	return decision
}

// namesLongestFirst orders names so that a name is tried before any name it contains.
func (m *Model) namesLongestFirst() []string {
	names := m.registry.Names()
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && len(names[j]) > len(names[j-1]); j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return names
}

var _ Router = (*Model)(nil)
