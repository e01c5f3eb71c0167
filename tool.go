package orchestra

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tool is a single callable tool.
//
// Tools focus on business logic: they receive the raw argument map from the model and
// return a string result. Argument validation against ParameterSchema and error capture
// are handled by the toolchain, not by the tool.
type Tool interface {
	// Name returns the identifier the model uses to request this tool.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// ParameterSchema returns the JSON Schema of the arguments object.
	// Returns nil if the tool takes no parameters.
	ParameterSchema() map[string]any

	// Call executes the tool.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// SpecOf returns the ToolSpec that advertises t to a model.
func SpecOf(t Tool) ToolSpec {
	return ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.ParameterSchema(),
	}
}

// ToolFunc is a convenience type for creating tools from functions with typed I/O.
//
// Arguments are decoded into I through encoding/json, so I is typically a struct with
// json tags matching the parameter schema. The output O is coerced to a string with
// [FormatResult].
type ToolFunc[I, O any] struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, input I) (O, error)
}

// NewToolFunc creates a new ToolFunc with typed input and output.
func NewToolFunc[I, O any](
	name, description string,
	schema map[string]any,
	fn func(ctx context.Context, input I) (O, error),
) *ToolFunc[I, O] {
	return &ToolFunc[I, O]{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

// Name returns the tool's identifier.
func (t *ToolFunc[I, O]) Name() string {
	return t.name
}

// Description returns a human-readable description for the model.
func (t *ToolFunc[I, O]) Description() string {
	return t.description
}

// ParameterSchema returns the JSON Schema for the tool's parameters.
func (t *ToolFunc[I, O]) ParameterSchema() map[string]any {
	return t.schema
}

// Call decodes args into I, runs the function and formats its output.
func (t *ToolFunc[I, O]) Call(ctx context.Context, args map[string]any) (string, error) {
	var input I
	if len(args) > 0 {
		raw, err := json.Marshal(args)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidToolArgs, err)
		}
		if err := json.Unmarshal(raw, &input); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidToolArgs, err)
		}
	}
	output, err := t.fn(ctx, input)
	if err != nil {
		return "", err
	}
	return FormatResult(output), nil
}

// FormatResult coerces a tool output to the string placed in the transcript.
//
// Strings pass through, numbers use their shortest decimal form, fmt.Stringer values use
// String, and composite values (structs, maps, slices) are rendered as YAML.
func FormatResult(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}

	switch reflect.Indirect(reflect.ValueOf(v)).Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return strings.TrimRight(string(out), "\n")
	default:
		return fmt.Sprint(v)
	}
}

// Compile-time check that ToolFunc implements Tool.
var _ Tool = (*ToolFunc[struct{}, string])(nil)
