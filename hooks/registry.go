package hooks

import (
	"context"

	"github.com/rickchristie/orchestra"
)

// Registry manages a collection of hooks and dispatches events to them.
//
// # Overview
//
// Registry is the single point routers and loops report to. It:
//   - Stores registered hooks in order
//   - Dispatches events to hooks that implement the relevant interface
//
// Hooks can implement any combination of hook interfaces and only receive events for
// the interfaces they implement.
//
// # Creating and Using
//
//	registry := hooks.NewRegistry().
//	    Register(loggers.NewLoggerHook(slog.Default())).
//	    Register(otelhook.New(tracer))
//
//	r := router.NewKeyword(agents).WithHooks(registry)
//	loop := toolloop.New(models, tools).WithHooks(registry)
//
// # Hooks with Multiple Interfaces
//
//	type Audit struct{ routes, tools int }
//
//	func (a *Audit) OnRoute(ctx context.Context, e orchestra.RouteEvent) {
//	    a.routes++
//	}
//
//	func (a *Audit) OnAfterToolCall(ctx context.Context, e orchestra.AfterToolCallEvent) {
//	    a.tools++
//	}
//
// # Thread Safety
//
// Registry is NOT thread-safe for registration. Register all hooks before the first run.
// Firing only reads the hook list, so a fully built Registry may be shared by concurrent
// runs as long as the hooks themselves are safe for that.
//
// A nil *Registry is valid and fires nothing.
type Registry struct {
	hooks []any
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make([]any, 0),
	}
}

// Register adds a hook to the registry.
// The hook can implement any combination of the orchestra hook interfaces.
// Returns the registry for chaining.
func (r *Registry) Register(hook any) *Registry {
	r.hooks = append(r.hooks, hook)
	return r
}

// FireBeforeModelCall dispatches a BeforeModelCallEvent to all registered
// BeforeModelCallHook implementations.
func (r *Registry) FireBeforeModelCall(ctx context.Context, event orchestra.BeforeModelCallEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(orchestra.BeforeModelCallHook); ok {
			hook.OnBeforeModelCall(ctx, event)
		}
	}
}

// FireAfterModelCall dispatches an AfterModelCallEvent to all registered
// AfterModelCallHook implementations.
// This is informational only; hooks cannot change the response.
func (r *Registry) FireAfterModelCall(ctx context.Context, event orchestra.AfterModelCallEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(orchestra.AfterModelCallHook); ok {
			hook.OnAfterModelCall(ctx, event)
		}
	}
}

// FireBeforeToolCall dispatches a BeforeToolCallEvent to all registered
// BeforeToolCallHook implementations.
func (r *Registry) FireBeforeToolCall(ctx context.Context, event orchestra.BeforeToolCallEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(orchestra.BeforeToolCallHook); ok {
			hook.OnBeforeToolCall(ctx, event)
		}
	}
}

// FireAfterToolCall dispatches an AfterToolCallEvent to all registered
// AfterToolCallHook implementations.
func (r *Registry) FireAfterToolCall(ctx context.Context, event orchestra.AfterToolCallEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(orchestra.AfterToolCallHook); ok {
			hook.OnAfterToolCall(ctx, event)
		}
	}
}

// FireRoute dispatches a RouteEvent to all registered RouteHook implementations.
func (r *Registry) FireRoute(ctx context.Context, event orchestra.RouteEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(orchestra.RouteHook); ok {
			hook.OnRoute(ctx, event)
		}
	}
}

// FireJudge dispatches a JudgeEvent to all registered JudgeHook implementations.
func (r *Registry) FireJudge(ctx context.Context, event orchestra.JudgeEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(orchestra.JudgeHook); ok {
			hook.OnJudge(ctx, event)
		}
	}
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.hooks)
}

// Clear removes all registered hooks.
func (r *Registry) Clear() {
	r.hooks = make([]any, 0)
}
