package orchestra

import (
	"context"
	"fmt"
)

// Model is the language-model invocation capability consumed by routers and loops.
//
// Invoke sends an ordered conversation and returns the model's reply as an assistant
// Message. When tools are offered via [WithTools], the reply may carry ToolCalls.
// Implementations must honor ctx cancellation since this is the only blocking call
// with unbounded external latency.
//
// See the models package for a LangChainGo-backed implementation.
type Model interface {
	Invoke(ctx context.Context, messages []Message, opts ...InvokeOption) (*Message, error)
}

// ModelFunc adapts a plain function to the Model interface.
type ModelFunc func(ctx context.Context, messages []Message, opts ...InvokeOption) (*Message, error)

// Invoke calls f.
func (f ModelFunc) Invoke(ctx context.Context, messages []Message, opts ...InvokeOption) (*Message, error) {
	return f(ctx, messages, opts...)
}

// ToolSpec declares a tool to the model: its name, description and JSON Schema for the
// arguments object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// InvokeOptions holds the optional inputs of a model invocation.
type InvokeOptions struct {
	// Tools offered to the model. Empty means plain text generation.
	Tools []ToolSpec

	// Schema, when set, asks the model for structured output matching this JSON Schema.
	Schema map[string]any
}

// InvokeOption configures a single model invocation.
type InvokeOption func(*InvokeOptions)

// WithTools offers the given tools to the model.
func WithTools(tools ...ToolSpec) InvokeOption {
	return func(o *InvokeOptions) {
		o.Tools = append(o.Tools, tools...)
	}
}

// WithSchema requests structured output matching the given JSON Schema. A model that
// honours it replies with the JSON document as Content, and returns a
// *SchemaMismatchError when the reply is not JSON or does not satisfy the schema.
func WithSchema(schema map[string]any) InvokeOption {
	return func(o *InvokeOptions) {
		o.Schema = schema
	}
}

// ApplyInvokeOptions folds opts into an InvokeOptions value. Model implementations call
// this to read what the caller asked for.
func ApplyInvokeOptions(opts ...InvokeOption) InvokeOptions {
	var o InvokeOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// ModelSet resolves an AgentSpec's ModelRef to a Model.
type ModelSet map[string]Model

// Resolve returns the model registered under ref.
func (s ModelSet) Resolve(ref string) (Model, error) {
	m, ok := s[ref]
	if !ok || m == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, ref)
	}
	return m, nil
}
