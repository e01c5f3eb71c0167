package tt

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rickchristie/orchestra"
)

// ErrNoScriptedResponse is returned by MockModel when it runs out of queued responses
// and has no fallback function.
var ErrNoScriptedResponse = errors.New("tt: no scripted response")

// -----------------------------------------------------------------------------
// MockModel - implements orchestra.Model from a script
// -----------------------------------------------------------------------------

// MockModel is a scripted orchestra.Model. Each Invoke consumes the next queued
// response or error. Once the queue is empty the fallback function is used, and
// without one Invoke fails with ErrNoScriptedResponse.
type MockModel struct {
	mu        sync.Mutex
	responses []*orchestra.Message
	errors    []error
	fallback  func(call int, messages []orchestra.Message) (*orchestra.Message, error)
	callCount int

	// CapturedMessages stores the messages passed to each Invoke call.
	CapturedMessages [][]orchestra.Message

	// CapturedOptions stores the options passed to each Invoke call.
	CapturedOptions []orchestra.InvokeOptions
}

// NewMockModel creates an empty MockModel.
func NewMockModel() *MockModel {
	return &MockModel{}
}

// AddResponse queues a plain text answer.
func (m *MockModel) AddResponse(content string) *MockModel {
	msg := orchestra.AssistantMessage(content)
	return m.AddMessage(&msg)
}

// AddToolCalls queues an answer that requests the given tool calls.
func (m *MockModel) AddToolCalls(content string, calls ...orchestra.ToolCallRequest) *MockModel {
	msg := orchestra.AssistantMessage(content, calls...)
	return m.AddMessage(&msg)
}

// AddMessage queues a raw response message.
func (m *MockModel) AddMessage(msg *orchestra.Message) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, msg)
	m.errors = append(m.errors, nil)
	return m
}

// AddError queues an invocation failure.
func (m *MockModel) AddError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, nil)
	m.errors = append(m.errors, err)
	return m
}

// WithFallback sets the function answering calls after the queue is exhausted.
// call is the zero-based index of the Invoke call.
func (m *MockModel) WithFallback(
	fn func(call int, messages []orchestra.Message) (*orchestra.Message, error),
) *MockModel {
	m.fallback = fn
	return m
}

// CallCount returns the number of Invoke calls so far.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastMessages returns the messages of the most recent call.
func (m *MockModel) LastMessages() []orchestra.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.CapturedMessages) == 0 {
		return nil
	}
	return m.CapturedMessages[len(m.CapturedMessages)-1]
}

// Invoke implements orchestra.Model.
func (m *MockModel) Invoke(
	ctx context.Context,
	messages []orchestra.Message,
	opts ...orchestra.InvokeOption,
) (*orchestra.Message, error) {
	m.mu.Lock()
	idx := m.callCount
	m.callCount++
	captured := append([]orchestra.Message(nil), messages...)
	m.CapturedMessages = append(m.CapturedMessages, captured)
	m.CapturedOptions = append(m.CapturedOptions, orchestra.ApplyInvokeOptions(opts...))
	var (
		resp *orchestra.Message
		err  error
		fb   = m.fallback
	)
	queued := idx < len(m.responses)
	if queued {
		resp, err = m.responses[idx], m.errors[idx]
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if queued {
		if err != nil {
			return nil, err
		}
		out := *resp
		return &out, nil
	}
	if fb != nil {
		return fb(idx, captured)
	}
	return nil, fmt.Errorf("%w for call %d", ErrNoScriptedResponse, idx)
}

// -----------------------------------------------------------------------------
// MockTool - implements orchestra.Tool
// -----------------------------------------------------------------------------

// MockTool is a configurable orchestra.Tool that records its calls.
type MockTool struct {
	mu          sync.Mutex
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, args map[string]any) (string, error)

	// Calls stores the arguments of each Call.
	Calls []map[string]any
}

// NewMockTool creates a tool that returns "ok" for every call.
func NewMockTool(name string) *MockTool {
	return &MockTool{
		name:        name,
		description: "mock tool " + name,
		fn: func(context.Context, map[string]any) (string, error) {
			return "ok", nil
		},
	}
}

// WithSchema sets the parameter schema.
func (t *MockTool) WithSchema(schema map[string]any) *MockTool {
	t.schema = schema
	return t
}

// WithResult makes every call return result.
func (t *MockTool) WithResult(result string) *MockTool {
	return t.WithFunc(func(context.Context, map[string]any) (string, error) {
		return result, nil
	})
}

// WithError makes every call fail with err.
func (t *MockTool) WithError(err error) *MockTool {
	return t.WithFunc(func(context.Context, map[string]any) (string, error) {
		return "", err
	})
}

// WithFunc sets the function backing Call.
func (t *MockTool) WithFunc(fn func(ctx context.Context, args map[string]any) (string, error)) *MockTool {
	t.fn = fn
	return t
}

// CallCount returns the number of calls so far.
func (t *MockTool) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Calls)
}

func (t *MockTool) Name() string                    { return t.name }
func (t *MockTool) Description() string             { return t.description }
func (t *MockTool) ParameterSchema() map[string]any { return t.schema }

// Call implements orchestra.Tool.
func (t *MockTool) Call(ctx context.Context, args map[string]any) (string, error) {
	t.mu.Lock()
	t.Calls = append(t.Calls, args)
	t.mu.Unlock()
	return t.fn(ctx, args)
}

var (
	_ orchestra.Model = (*MockModel)(nil)
	_ orchestra.Tool  = (*MockTool)(nil)
)
