// Package hooks provides a registry for observing routers and loops.
//
// Hooks observe events during routing, tool loops and critique loops. Each hook
// interface corresponds to a specific event type; implement only the interfaces you need.
//
// # Hook Interfaces
//
// Model call hooks:
//   - [orchestra.BeforeModelCallHook] - Called before each model invocation
//   - [orchestra.AfterModelCallHook] - Called after each model invocation, also on error
//
// Tool call hooks:
//   - [orchestra.BeforeToolCallHook] - Called before each tool execution
//   - [orchestra.AfterToolCallHook] - Called after each tool execution
//
// Decision hooks:
//   - [orchestra.RouteHook] - Called once a router has picked an agent
//   - [orchestra.JudgeHook] - Called after every judgement of the critique loop
//
// # Creating a Hook
//
//	type SlowCallHook struct{ threshold time.Duration }
//
//	func (h *SlowCallHook) OnAfterModelCall(ctx context.Context, e orchestra.AfterModelCallEvent) {
//	    if e.Duration > h.threshold {
//	        log.Printf("slow %s call on %s: %v", e.Component, e.ModelRef, e.Duration)
//	    }
//	}
//
// # Ready-made Hooks
//
//   - loggers.LoggerHook writes every event to a slog.Logger
//   - otelhook.Hook records OpenTelemetry spans
package hooks
