package loggers

import (
	"context"
	"log/slog"

	"github.com/rickchristie/orchestra"
)

// SlogHook logs one structured record per event. Requests and replies are logged at
// debug level, decisions at info level, and failures or fallbacks at warn level.
type SlogHook struct {
	logger *slog.Logger
}

// NewSlogHook creates a hook writing to logger. A nil logger uses slog.Default.
func NewSlogHook(logger *slog.Logger) *SlogHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogHook{logger: logger}
}

// OnBeforeModelCall implements orchestra.BeforeModelCallHook.
func (h *SlogHook) OnBeforeModelCall(ctx context.Context, event orchestra.BeforeModelCallEvent) {
	h.logger.DebugContext(ctx, "model call",
		"component", event.Component,
		"model", event.ModelRef,
		"messages", len(event.Messages),
	)
}

// OnAfterModelCall implements orchestra.AfterModelCallHook.
func (h *SlogHook) OnAfterModelCall(ctx context.Context, event orchestra.AfterModelCallEvent) {
	if event.Error != nil {
		h.logger.WarnContext(ctx, "model call failed",
			"component", event.Component,
			"model", event.ModelRef,
			"duration", event.Duration,
			"error", event.Error,
		)
		return
	}
	attrs := []any{
		"component", event.Component,
		"model", event.ModelRef,
		"duration", event.Duration,
	}
	if event.Response != nil {
		attrs = append(attrs,
			"content_length", len(event.Response.Content),
			"tool_calls", len(event.Response.ToolCalls),
		)
	}
	h.logger.DebugContext(ctx, "model replied", attrs...)
}

// OnBeforeToolCall implements orchestra.BeforeToolCallHook.
func (h *SlogHook) OnBeforeToolCall(ctx context.Context, event orchestra.BeforeToolCallEvent) {
	h.logger.DebugContext(ctx, "tool call",
		"tool", event.Call.Name,
		"call_id", event.Call.ID,
		"iteration", event.Iteration,
	)
}

// OnAfterToolCall implements orchestra.AfterToolCallHook.
func (h *SlogHook) OnAfterToolCall(ctx context.Context, event orchestra.AfterToolCallEvent) {
	if event.Error != nil {
		h.logger.WarnContext(ctx, "tool call failed",
			"tool", event.Call.Name,
			"call_id", event.Call.ID,
			"iteration", event.Iteration,
			"duration", event.Duration,
			"error", event.Error,
		)
		return
	}
	h.logger.InfoContext(ctx, "tool call completed",
		"tool", event.Call.Name,
		"call_id", event.Call.ID,
		"iteration", event.Iteration,
		"duration", event.Duration,
	)
}

// OnRoute implements orchestra.RouteHook.
func (h *SlogHook) OnRoute(ctx context.Context, event orchestra.RouteEvent) {
	level := slog.LevelInfo
	if event.Fallback {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, "request routed",
		"strategy", event.Strategy,
		"agent", event.Selected,
		"fallback", event.Fallback,
		"reasoning", event.Reasoning,
	)
}

// OnJudge implements orchestra.JudgeHook.
func (h *SlogHook) OnJudge(ctx context.Context, event orchestra.JudgeEvent) {
	level := slog.LevelInfo
	if event.Fallback {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, "response judged",
		"attempt", event.Attempt,
		"decision", event.Decision,
		"fallback", event.Fallback,
		"reasoning", event.Reasoning,
	)
}

var (
	_ orchestra.BeforeModelCallHook = (*SlogHook)(nil)
	_ orchestra.AfterModelCallHook  = (*SlogHook)(nil)
	_ orchestra.BeforeToolCallHook  = (*SlogHook)(nil)
	_ orchestra.AfterToolCallHook   = (*SlogHook)(nil)
	_ orchestra.RouteHook           = (*SlogHook)(nil)
	_ orchestra.JudgeHook           = (*SlogHook)(nil)
)
