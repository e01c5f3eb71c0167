// Package otelhook exports orchestration events as OpenTelemetry spans.
//
// Every finished model call, tool call, routing decision and judgement becomes a span
// whose parent is the span carried by the context passed to the router or loop:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	registry := hooks.NewRegistry().Register(otelhook.New(tp))
//	loop := toolloop.New(models, chain).WithHooks(registry)
//
// Spans are created when the call completes and back-dated by its duration, so the hook
// keeps no state between the Before and After events and may serve concurrent runs.
// Before events are recorded as span events on the parent span.
package otelhook

import (
	"context"
	"time"

	"github.com/rickchristie/orchestra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of the spans.
const TracerName = "github.com/rickchristie/orchestra"

// Span names.
const (
	SpanModelCall = "orchestra.model_call"
	SpanToolCall  = "orchestra.tool_call"
	SpanRoute     = "orchestra.route"
	SpanJudge     = "orchestra.judge"
)

// Attribute keys.
const (
	AttrComponent    = attribute.Key("orchestra.component")
	AttrModel        = attribute.Key("orchestra.model")
	AttrMessages     = attribute.Key("orchestra.messages")
	AttrToolCalls    = attribute.Key("orchestra.tool_calls")
	AttrToolName     = attribute.Key("orchestra.tool.name")
	AttrToolCallID   = attribute.Key("orchestra.tool.call_id")
	AttrIteration    = attribute.Key("orchestra.iteration")
	AttrStrategy     = attribute.Key("orchestra.route.strategy")
	AttrSelected     = attribute.Key("orchestra.route.selected")
	AttrFallback     = attribute.Key("orchestra.fallback")
	AttrAttempt      = attribute.Key("orchestra.judge.attempt")
	AttrDecision     = attribute.Key("orchestra.judge.decision")
	AttrHasFeedback  = attribute.Key("orchestra.judge.has_feedback")
	AttrRequestChars = attribute.Key("orchestra.request.length")
)

// Hook implements every orchestra hook interface.
type Hook struct {
	tracer trace.Tracer
	now    func() time.Time
}

// New creates a hook using tp. A nil tp uses the global provider.
func New(tp trace.TracerProvider) *Hook {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Hook{
		tracer: tp.Tracer(TracerName),
		now:    time.Now,
	}
}

// OnBeforeModelCall adds an event to the active span.
func (h *Hook) OnBeforeModelCall(ctx context.Context, event orchestra.BeforeModelCallEvent) {
	trace.SpanFromContext(ctx).AddEvent(SpanModelCall+".start", trace.WithAttributes(
		AttrComponent.String(event.Component),
		AttrModel.String(event.ModelRef),
		AttrMessages.Int(len(event.Messages)),
	))
}

// OnAfterModelCall records the model call span.
func (h *Hook) OnAfterModelCall(ctx context.Context, event orchestra.AfterModelCallEvent) {
	attrs := []attribute.KeyValue{
		AttrComponent.String(event.Component),
		AttrModel.String(event.ModelRef),
		AttrMessages.Int(len(event.Messages)),
	}
	if event.Response != nil {
		attrs = append(attrs, AttrToolCalls.Int(len(event.Response.ToolCalls)))
	}
	h.record(ctx, SpanModelCall, event.Duration, event.Error, attrs...)
}

// OnBeforeToolCall adds an event to the active span.
func (h *Hook) OnBeforeToolCall(ctx context.Context, event orchestra.BeforeToolCallEvent) {
	trace.SpanFromContext(ctx).AddEvent(SpanToolCall+".start", trace.WithAttributes(
		AttrToolName.String(event.Call.Name),
		AttrToolCallID.String(event.Call.ID),
		AttrIteration.Int(event.Iteration),
	))
}

// OnAfterToolCall records the tool call span. A failed tool is recorded as an error
// even though the loop carries on.
func (h *Hook) OnAfterToolCall(ctx context.Context, event orchestra.AfterToolCallEvent) {
	h.record(ctx, SpanToolCall, event.Duration, event.Error,
		AttrToolName.String(event.Call.Name),
		AttrToolCallID.String(event.Call.ID),
		AttrIteration.Int(event.Iteration),
	)
}

// OnRoute records the routing decision.
func (h *Hook) OnRoute(ctx context.Context, event orchestra.RouteEvent) {
	h.record(ctx, SpanRoute, 0, nil,
		AttrStrategy.String(event.Strategy),
		AttrSelected.String(event.Selected),
		AttrFallback.Bool(event.Fallback),
		AttrRequestChars.Int(len(event.Request)),
	)
}

// OnJudge records one judgement.
func (h *Hook) OnJudge(ctx context.Context, event orchestra.JudgeEvent) {
	h.record(ctx, SpanJudge, 0, nil,
		AttrAttempt.Int(event.Attempt),
		AttrDecision.String(event.Decision),
		AttrFallback.Bool(event.Fallback),
		AttrHasFeedback.Bool(event.Feedback != ""),
	)
}

func (h *Hook) record(ctx context.Context, name string, d time.Duration, err error, attrs ...attribute.KeyValue) {
	end := h.now()
	_, span := h.tracer.Start(ctx, name,
		trace.WithTimestamp(end.Add(-d)),
		trace.WithAttributes(attrs...),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(end))
}

var (
	_ orchestra.BeforeModelCallHook = (*Hook)(nil)
	_ orchestra.AfterModelCallHook  = (*Hook)(nil)
	_ orchestra.BeforeToolCallHook  = (*Hook)(nil)
	_ orchestra.AfterToolCallHook   = (*Hook)(nil)
	_ orchestra.RouteHook           = (*Hook)(nil)
	_ orchestra.JudgeHook           = (*Hook)(nil)
)
