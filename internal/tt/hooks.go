package tt

import (
	"context"
	"sync"

	"github.com/rickchristie/orchestra"
)

// RecordingHook implements every orchestra hook interface and keeps the events it
// receives. Kinds holds the event kinds in arrival order, for example
// "before_model_call" or "route".
type RecordingHook struct {
	mu sync.Mutex

	Kinds            []string
	BeforeModelCalls []orchestra.BeforeModelCallEvent
	AfterModelCalls  []orchestra.AfterModelCallEvent
	BeforeToolCalls  []orchestra.BeforeToolCallEvent
	AfterToolCalls   []orchestra.AfterToolCallEvent
	Routes           []orchestra.RouteEvent
	Judgements       []orchestra.JudgeEvent
}

// NewRecordingHook creates an empty RecordingHook.
func NewRecordingHook() *RecordingHook {
	return &RecordingHook{}
}

func (h *RecordingHook) OnBeforeModelCall(_ context.Context, e orchestra.BeforeModelCallEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Kinds = append(h.Kinds, "before_model_call")
	h.BeforeModelCalls = append(h.BeforeModelCalls, e)
}

func (h *RecordingHook) OnAfterModelCall(_ context.Context, e orchestra.AfterModelCallEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Kinds = append(h.Kinds, "after_model_call")
	h.AfterModelCalls = append(h.AfterModelCalls, e)
}

func (h *RecordingHook) OnBeforeToolCall(_ context.Context, e orchestra.BeforeToolCallEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Kinds = append(h.Kinds, "before_tool_call")
	h.BeforeToolCalls = append(h.BeforeToolCalls, e)
}

func (h *RecordingHook) OnAfterToolCall(_ context.Context, e orchestra.AfterToolCallEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Kinds = append(h.Kinds, "after_tool_call")
	h.AfterToolCalls = append(h.AfterToolCalls, e)
}

func (h *RecordingHook) OnRoute(_ context.Context, e orchestra.RouteEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Kinds = append(h.Kinds, "route")
	h.Routes = append(h.Routes, e)
}

func (h *RecordingHook) OnJudge(_ context.Context, e orchestra.JudgeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Kinds = append(h.Kinds, "judge")
	h.Judgements = append(h.Judgements, e)
}

var (
	_ orchestra.BeforeModelCallHook = (*RecordingHook)(nil)
	_ orchestra.AfterModelCallHook  = (*RecordingHook)(nil)
	_ orchestra.BeforeToolCallHook  = (*RecordingHook)(nil)
	_ orchestra.AfterToolCallHook   = (*RecordingHook)(nil)
	_ orchestra.RouteHook           = (*RecordingHook)(nil)
	_ orchestra.JudgeHook           = (*RecordingHook)(nil)
)
