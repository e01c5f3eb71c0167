// Package orchestra routes requests to specialised LLM agents and drives the loops they
// answer with.
//
// The root package holds the shared vocabulary: agents and their registry, messages and
// transcripts, the Model and Tool capabilities, hook interfaces and errors. The moving
// parts live in subpackages:
//
//   - router: pick an agent by keyword score or by asking a controller model
//   - agents/toolloop: let an agent call tools until it answers
//   - agents/critique: refine an answer with a solver and a judge
//   - parser: read "PREFIX: value" fields out of free text
//   - controller: route, then answer with the selected agent
//   - catalog: load agents and policy from YAML
//   - models: LangChainGo adapter, circuit breaker and rate limit
//
// # Quick Start: Multi-Persona Controller
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/rickchristie/orchestra"
//	    "github.com/rickchristie/orchestra/catalog"
//	    "github.com/rickchristie/orchestra/controller"
//	    "github.com/rickchristie/orchestra/models"
//	    "github.com/tmc/langchaingo/llms/openai"
//	)
//
//	func main() {
//	    // 1. Load the built-in personas: Dr. Code, Creative Writer, Business Analyst and
//	    //    Witty Comedian.
//	    cfg := catalog.Default()
//
//	    // 2. Bind every model reference to a client
//	    set := orchestra.ModelSet{}
//	    for _, ref := range cfg.ModelRefs() {
//	        llm, _ := openai.New(
//	            openai.WithBaseURL("http://localhost:11434/v1"),
//	            openai.WithToken("ollama"),
//	            openai.WithModel(ref),
//	        )
//	        set[ref] = models.NewLCGWrapper(llm)
//	    }
//
//	    // 3. Route and answer
//	    r, _ := cfg.Router(set, nil)
//	    res, err := controller.New(r, set).Handle(context.Background(), "Tell me a funny joke about cats")
//	    if err != nil {
//	        panic(err)
//	    }
//	    fmt.Println(res.Decision.Selected.DisplayName(), res.Decision.Reasoning)
//	    fmt.Println(res.Answer)
//	}
//
// # Agents & Registry
//
// An [AgentSpec] names a persona (the system prompt), the model that runs it, keywords
// for the keyword router and specialties for the controller model. A [Registry] holds the
// agents in catalog order with a designated default, which routers select whenever no
// confident choice can be made. Registries are immutable and safe to share.
//
// # Models
//
// [Model] is the one blocking capability: send messages, get an assistant [Message]
// back. Offer tools with [WithTools] and request structured output with [WithSchema].
// [ModelSet] resolves an agent's ModelRef. models.LCGWrapper adapts any LangChainGo
// client; tests use the scripted mock in internal/tt. A schema-bound reply that does
// not conform fails with [*SchemaMismatchError]; the structured package wires such
// agents into a controller.
//
// # Tools
//
// A [Tool] receives the raw argument map and returns a string. [NewToolFunc] builds one
// from a typed function:
//
//	add := orchestra.NewToolFunc("add", "Add two numbers",
//	    schema.Object(map[string]*schema.Property{
//	        "a": schema.Number("First number"),
//	        "b": schema.Number("Second number"),
//	    }, "a", "b"),
//	    func(ctx context.Context, in struct{ A, B float64 }) (float64, error) {
//	        return in.A + in.B, nil
//	    },
//	)
//
// The toolchain package validates arguments against the tool's schema before calling
// it. Failures come back as [*ToolError]; the tool loop writes them into the transcript
// as "Error: ..." and lets the model recover.
//
// # Transcripts
//
// A [Transcript] is the append-only message log of one tool loop run. It starts with
// the user request; every tool result follows the assistant message that asked for it.
// Messages are copied in and out, so recorded history cannot be edited.
//
// # Hooks
//
// Routers and loops report what they do through hooks. Implement any of
// [BeforeModelCallHook], [AfterModelCallHook], [BeforeToolCallHook],
// [AfterToolCallHook], [RouteHook] or [JudgeHook], register the value with
// hooks.Registry and pass the registry to WithHooks. The loggers and hooks/otelhook
// packages provide ready-made hooks.
//
// # Errors
//
// Only failures of the model call itself propagate. A router that cannot reach its
// controller returns a [*DispatchError] (errors.Is [ErrDispatchFailure]). A tool loop that
// is still asking for tools at its ceiling returns an [*IterationLimitError] carrying
// the transcript. Everything else is recovered in place: unparseable verdicts select the
// default agent or count as a failed judgement, and failed tools become transcript
// entries.
package orchestra
