package loggers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/agents/toolloop"
	"github.com/rickchristie/orchestra/hooks"
	"github.com/rickchristie/orchestra/internal/tt"
	"github.com/rickchristie/orchestra/toolchain"
	"github.com/rickchristie/orchestra/tools/calculator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 1, 2, 3, 4, 5, 6000000, time.UTC)
}

func TestLoggerHook_Events(t *testing.T) {
	call := orchestra.ToolCallRequest{ID: "c1", Name: "divide", Arguments: map[string]any{"a": 10.0, "b": 0.0}}
	reply := orchestra.AssistantMessage("Let me divide.", call)

	tests := []struct {
		name     string
		fire     func(ctx context.Context, r *hooks.Registry)
		expected []string
	}{
		{
			name: "before model call",
			fire: func(ctx context.Context, r *hooks.Registry) {
				r.FireBeforeModelCall(ctx, orchestra.BeforeModelCallEvent{
					Component: "toolloop",
					ModelRef:  "gpt-oss:20b",
					Messages:  []orchestra.Message{orchestra.SystemMessage("line one\nline two")},
				})
			},
			expected: []string{
				">>> [BeforeModelCall: toolloop (gpt-oss:20b)]: 2025-01-02 03:04:05.006",
				"  [0] Role: system",
				"        line one\n        line two",
			},
		},
		{
			name: "after model call with tool calls",
			fire: func(ctx context.Context, r *hooks.Registry) {
				r.FireAfterModelCall(ctx, orchestra.AfterModelCallEvent{
					Component: "toolloop",
					ModelRef:  "gpt-oss:20b",
					Response:  &reply,
					Duration:  2 * time.Second,
				})
			},
			expected: []string{
				"AfterModelCall: toolloop (gpt-oss:20b, duration: 2s)",
				"Content:\n    Let me divide.",
				"name: divide",
			},
		},
		{
			name: "after model call error",
			fire: func(ctx context.Context, r *hooks.Registry) {
				r.FireAfterModelCall(ctx, orchestra.AfterModelCallEvent{
					Component: "router",
					Error:     errors.New("connection refused"),
				})
			},
			expected: []string{"Error: connection refused"},
		},
		{
			name: "tool call pair",
			fire: func(ctx context.Context, r *hooks.Registry) {
				r.FireBeforeToolCall(ctx, orchestra.BeforeToolCallEvent{Iteration: 1, Call: call})
				r.FireAfterToolCall(ctx, orchestra.AfterToolCallEvent{
					Iteration: 1,
					Call:      call,
					Result:    `Error: tool "divide": cannot divide by zero`,
					Error:     errors.New("cannot divide by zero"),
				})
			},
			expected: []string{
				"BeforeToolCall: divide (iteration 1)",
				"a: 10",
				"Error: cannot divide by zero",
			},
		},
		{
			name: "route and judge",
			fire: func(ctx context.Context, r *hooks.Registry) {
				r.FireRoute(ctx, orchestra.RouteEvent{
					Request:   "Tell me a joke",
					Strategy:  "keyword",
					Selected:  "witty_comedian",
					Reasoning: "Selected witty_comedian with score 1",
				})
				r.FireJudge(ctx, orchestra.JudgeEvent{Attempt: 2, Decision: "FAIL", Feedback: "Add an example."})
			},
			expected: []string{
				">>> [Route: keyword]",
				"selected: witty_comedian",
				">>> [Judge: attempt 2]",
				"decision: FAIL",
				"feedback: Add an example.",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := NewLoggerHookWithWriter(&buf)
			h.now = fixedClock

			tc.fire(context.Background(), hooks.NewRegistry().Register(h))

			for _, want := range tc.expected {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestSlogHook_Levels(t *testing.T) {
	type expected struct {
		level string
		msg   string
	}

	tests := []struct {
		name     string
		fire     func(ctx context.Context, h *SlogHook)
		expected expected
	}{
		{
			name: "confident route",
			fire: func(ctx context.Context, h *SlogHook) {
				h.OnRoute(ctx, orchestra.RouteEvent{Strategy: "keyword", Selected: "dr_code"})
			},
			expected: expected{level: "INFO", msg: "request routed"},
		},
		{
			name: "fallback route",
			fire: func(ctx context.Context, h *SlogHook) {
				h.OnRoute(ctx, orchestra.RouteEvent{Strategy: "model", Selected: "dr_code", Fallback: true})
			},
			expected: expected{level: "WARN", msg: "request routed"},
		},
		{
			name: "failed model call",
			fire: func(ctx context.Context, h *SlogHook) {
				h.OnAfterModelCall(ctx, orchestra.AfterModelCallEvent{Component: "router", Error: errors.New("boom")})
			},
			expected: expected{level: "WARN", msg: "model call failed"},
		},
		{
			name: "tool completed",
			fire: func(ctx context.Context, h *SlogHook) {
				h.OnAfterToolCall(ctx, orchestra.AfterToolCallEvent{Call: orchestra.ToolCallRequest{Name: "add"}})
			},
			expected: expected{level: "INFO", msg: "tool call completed"},
		},
		{
			name: "judge fallback",
			fire: func(ctx context.Context, h *SlogHook) {
				h.OnJudge(ctx, orchestra.JudgeEvent{Attempt: 1, Decision: "FAIL", Fallback: true})
			},
			expected: expected{level: "WARN", msg: "response judged"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			tc.fire(context.Background(), NewSlogHook(logger))

			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, tc.expected.level, record["level"])
			assert.Equal(t, tc.expected.msg, record["msg"])
		})
	}
}

func TestHooks_ToolLoopRun(t *testing.T) {
	chain := toolchain.New()
	for _, tool := range calculator.Basic() {
		chain.MustRegister(tool)
	}

	model := tt.NewMockModel().
		AddToolCalls("", orchestra.ToolCallRequest{ID: "c1", Name: "add", Arguments: map[string]any{"a": 15.0, "b": 25.0}}).
		AddResponse("The sum is 40.")

	var text, structured bytes.Buffer
	registry := hooks.NewRegistry().
		Register(NewLoggerHookWithWriter(&text)).
		Register(NewSlogHook(slog.New(slog.NewTextHandler(&structured, &slog.HandlerOptions{Level: slog.LevelDebug}))))

	loop := toolloop.New(orchestra.ModelSet{"m": model}, chain).WithHooks(registry)
	result, err := loop.Run(context.Background(), "What is 15 + 25?", orchestra.AgentSpec{Name: "calc", ModelRef: "m"})
	require.NoError(t, err)
	assert.Equal(t, "The sum is 40.", result.FinalAnswer)

	assert.Contains(t, text.String(), "BeforeToolCall: add (iteration 1)")
	assert.Contains(t, text.String(), "Output:\n    40")
	assert.Equal(t, 2, strings.Count(text.String(), ">>> [AfterModelCall: toolloop"))

	assert.Contains(t, structured.String(), "msg=\"tool call completed\" tool=add")
	assert.Equal(t, 2, strings.Count(structured.String(), "msg=\"model replied\""))
}
