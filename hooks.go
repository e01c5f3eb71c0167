package orchestra

import (
	"context"
	"time"
)

// -----------------------------------------------------------------------------
// Hook Interfaces
// -----------------------------------------------------------------------------
//
// Hooks observe routers and loops without changing their behavior. To use hooks:
//
//  1. Implement the desired hook interface(s)
//  2. Register with hooks.Registry
//  3. Pass the registry to the router or loop via WithHooks
//
// Example:
//
//	type ToolAudit struct{ calls int }
//
//	func (h *ToolAudit) OnAfterToolCall(ctx context.Context, e orchestra.AfterToolCallEvent) {
//	    h.calls++
//	}
//
//	registry := hooks.NewRegistry().Register(&ToolAudit{})
//	loop := toolloop.New(models, tools).WithHooks(registry)
//
// Hooks are called synchronously in registration order and must not block for long.
// For paired hooks (Before/After), the After hook is always called once the Before hook
// has been called, including on error.
// -----------------------------------------------------------------------------

// BeforeModelCallHook is notified before every model invocation.
type BeforeModelCallHook interface {
	OnBeforeModelCall(ctx context.Context, event BeforeModelCallEvent)
}

// AfterModelCallHook is notified after every model invocation, successful or not.
type AfterModelCallHook interface {
	OnAfterModelCall(ctx context.Context, event AfterModelCallEvent)
}

// BeforeToolCallHook is notified before each tool invocation in the tool loop.
type BeforeToolCallHook interface {
	OnBeforeToolCall(ctx context.Context, event BeforeToolCallEvent)
}

// AfterToolCallHook is notified after each tool invocation, including failed ones.
type AfterToolCallHook interface {
	OnAfterToolCall(ctx context.Context, event AfterToolCallEvent)
}

// RouteHook is notified when a router has selected an agent.
type RouteHook interface {
	OnRoute(ctx context.Context, event RouteEvent)
}

// JudgeHook is notified after each judgement of the critique loop.
type JudgeHook interface {
	OnJudge(ctx context.Context, event JudgeEvent)
}

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

// BeforeModelCallEvent describes a model invocation about to happen.
type BeforeModelCallEvent struct {
	// Component is the caller: "router", "toolloop", "critique:solver", etc.
	Component string
	ModelRef  string
	Messages  []Message
}

// AfterModelCallEvent describes a finished model invocation.
type AfterModelCallEvent struct {
	Component string
	ModelRef  string
	Messages  []Message
	Response  *Message
	Duration  time.Duration
	Error     error
}

// BeforeToolCallEvent describes a tool invocation about to happen.
type BeforeToolCallEvent struct {
	Iteration int
	Call      ToolCallRequest
}

// AfterToolCallEvent describes a finished tool invocation. Error is set when the result
// was captured from a failure.
type AfterToolCallEvent struct {
	Iteration int
	Call      ToolCallRequest
	Result    string
	Duration  time.Duration
	Error     error
}

// RouteEvent describes a routing decision.
type RouteEvent struct {
	Request   string
	Strategy  string
	Selected  string
	Reasoning string
	Fallback  bool
}

// JudgeEvent describes one judgement of the critique loop.
type JudgeEvent struct {
	Attempt   int
	Decision  string
	Reasoning string
	Feedback  string
	Fallback  bool
}
