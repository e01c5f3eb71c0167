// Package loggers provides hooks that log routing, model calls, tool calls and
// judgements.
//
// [LoggerHook] writes a human-readable trace with YAML payloads, suited to the CLI and
// to debugging a single run. [SlogHook] emits one structured log/slog record per event.
package loggers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rickchristie/orchestra"
	"gopkg.in/yaml.v3"
)

// LoggerHook implements all hook interfaces to log everything that happens during a run.
// All structs are logged as YAML with block scalars for easy reading.
// Nothing is truncated - full content is always logged.
type LoggerHook struct {
	out io.Writer
	now func() time.Time
}

// NewLoggerHook creates a new LoggerHook that writes to stdout.
func NewLoggerHook() *LoggerHook {
	return NewLoggerHookWithWriter(os.Stdout)
}

// NewLoggerHookWithWriter creates a new LoggerHook that writes to the given writer.
func NewLoggerHookWithWriter(w io.Writer) *LoggerHook {
	return &LoggerHook{
		out: w,
		now: time.Now,
	}
}

// logEvent logs an event header with timestamp.
func (h *LoggerHook) logEvent(name string) {
	timestamp := h.now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(h.out, "\n>>> [%s]: %s\n", name, timestamp)
}

// log writes a line without any prefix.
func (h *LoggerHook) log(format string, args ...any) {
	fmt.Fprintf(h.out, format+"\n", args...)
}

func (h *LoggerHook) logYAML(v any) {
	data, err := yaml.Marshal(v)
	if err != nil {
		h.log("(failed to marshal: %v)", err)
		return
	}
	fmt.Fprint(h.out, string(data))
}

func (h *LoggerHook) logBlock(label, text string) {
	h.log("%s:", label)
	for _, line := range strings.Split(text, "\n") {
		h.log("    %s", line)
	}
}

// OnBeforeModelCall logs the conversation sent to the model.
func (h *LoggerHook) OnBeforeModelCall(ctx context.Context, event orchestra.BeforeModelCallEvent) {
	h.logEvent(fmt.Sprintf("BeforeModelCall: %s (%s)", event.Component, event.ModelRef))
	h.log("Request:")
	for i, msg := range event.Messages {
		h.log("  [%d] Role: %s", i, msg.Role)
		if msg.Content != "" {
			h.log("      Content:")
			for _, line := range strings.Split(msg.Content, "\n") {
				h.log("        %s", line)
			}
		}
		for _, call := range msg.ToolCalls {
			h.log("      ToolCall: %s (%s)", call.Name, call.ID)
		}
		if msg.ToolCallID != "" {
			h.log("      ToolCallID: %s", msg.ToolCallID)
		}
	}
}

// OnAfterModelCall logs the model reply.
func (h *LoggerHook) OnAfterModelCall(ctx context.Context, event orchestra.AfterModelCallEvent) {
	h.logEvent(fmt.Sprintf("AfterModelCall: %s (%s, duration: %s)", event.Component, event.ModelRef, event.Duration))

	if event.Error != nil {
		h.log("Error: %v", event.Error)
		return
	}
	if event.Response == nil {
		return
	}
	if event.Response.Content != "" {
		h.logBlock("Content", event.Response.Content)
	}
	if len(event.Response.ToolCalls) > 0 {
		h.log("ToolCalls:")
		h.logYAML(toolCallsData(event.Response.ToolCalls))
	}
}

// OnBeforeToolCall logs the tool call before execution.
func (h *LoggerHook) OnBeforeToolCall(ctx context.Context, event orchestra.BeforeToolCallEvent) {
	h.logEvent(fmt.Sprintf("BeforeToolCall: %s (iteration %d)", event.Call.Name, event.Iteration))
	h.log("Args:")
	h.logYAML(event.Call.Arguments)
}

// OnAfterToolCall logs the tool call result after execution.
func (h *LoggerHook) OnAfterToolCall(ctx context.Context, event orchestra.AfterToolCallEvent) {
	h.logEvent(fmt.Sprintf("AfterToolCall: %s (duration: %s)", event.Call.Name, event.Duration))

	if event.Error != nil {
		h.log("Error: %v", event.Error)
		return
	}
	h.logBlock("Output", event.Result)
}

// OnRoute logs the routing decision.
func (h *LoggerHook) OnRoute(ctx context.Context, event orchestra.RouteEvent) {
	h.logEvent(fmt.Sprintf("Route: %s", event.Strategy))
	h.logYAML(map[string]any{
		"request":   event.Request,
		"selected":  event.Selected,
		"reasoning": event.Reasoning,
		"fallback":  event.Fallback,
	})
}

// OnJudge logs a critique judgement.
func (h *LoggerHook) OnJudge(ctx context.Context, event orchestra.JudgeEvent) {
	h.logEvent(fmt.Sprintf("Judge: attempt %d", event.Attempt))
	data := map[string]any{
		"decision":  event.Decision,
		"reasoning": event.Reasoning,
		"fallback":  event.Fallback,
	}
	if event.Feedback != "" {
		data["feedback"] = event.Feedback
	}
	h.logYAML(data)
}

func toolCallsData(calls []orchestra.ToolCallRequest) []map[string]any {
	out := make([]map[string]any, len(calls))
	for i, c := range calls {
		out[i] = map[string]any{
			"id":        c.ID,
			"name":      c.Name,
			"arguments": c.Arguments,
		}
	}
	return out
}

// Compile-time checks that LoggerHook implements all hook interfaces.
var (
	_ orchestra.BeforeModelCallHook = (*LoggerHook)(nil)
	_ orchestra.AfterModelCallHook  = (*LoggerHook)(nil)
	_ orchestra.BeforeToolCallHook  = (*LoggerHook)(nil)
	_ orchestra.AfterToolCallHook   = (*LoggerHook)(nil)
	_ orchestra.RouteHook           = (*LoggerHook)(nil)
	_ orchestra.JudgeHook           = (*LoggerHook)(nil)
)
