// Package router selects the agent that should handle a request.
//
// Two interchangeable strategies implement [Router]:
//
//   - [Keyword] scores every agent by how many of its keywords occur in the request.
//     It is deterministic and never fails.
//   - [Model] asks a controller model to pick an agent by name and parses the verdict.
//     A verdict that names no known agent resolves to the registry default.
//
// When no confident choice is possible both strategies select the registry's default
// agent and explain why in Decision.Reasoning. Only a failed model call is an error:
// it is returned as an *orchestra.DispatchError and the request is not routed.
// [WithFallback] chains a second strategy for that case:
//
//	r := router.WithFallback(
//	    router.NewModel(agents, controller),
//	    router.NewKeyword(agents),
//	)
//	decision, err := r.Route(ctx, "Tell me a funny joke about cats")
package router

import (
	"context"

	"github.com/rickchristie/orchestra"
)

// Strategy names recorded in Decision.Strategy.
const (
	StrategyKeyword = "keyword"
	StrategyModel   = "model"
)

// Router selects an agent for a request.
type Router interface {
	Route(ctx context.Context, request string) (*Decision, error)
}

// Decision is the outcome of routing one request.
type Decision struct {
	// Selected is the agent that should handle the request.
	Selected orchestra.AgentSpec

	// Reasoning explains the choice. For fallbacks it records why the default was used.
	Reasoning string

	// Scores maps agent name to keyword score. Set by the keyword strategy only.
	Scores map[string]int

	// RawVerdict is the controller model's unparsed reply. Set by the model strategy only.
	RawVerdict string

	// Strategy is the strategy that produced the decision.
	Strategy string

	// Fallback reports that the default agent was chosen because no confident choice
	// could be made.
	Fallback bool
}

func routeEvent(request string, d *Decision) orchestra.RouteEvent {
	return orchestra.RouteEvent{
		Request:   request,
		Strategy:  d.Strategy,
		Selected:  d.Selected.Name,
		Reasoning: d.Reasoning,
		Fallback:  d.Fallback,
	}
}
