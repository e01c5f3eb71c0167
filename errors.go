package orchestra

import (
	"errors"
	"fmt"
)

var (
	// ErrDispatchFailure is returned when the model call behind a routing decision fails.
	// The request is not routed.
	ErrDispatchFailure = errors.New("orchestra: dispatch failure")

	// ErrIterationLimitExceeded is returned when a tool loop keeps requesting tools past
	// its configured ceiling.
	ErrIterationLimitExceeded = errors.New("orchestra: iteration limit exceeded")

	// ErrUnknownTool is reported when a model requests a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidToolArgs is reported when tool arguments fail schema validation.
	ErrInvalidToolArgs = errors.New("invalid tool arguments")

	// ErrUnknownModel is returned when a ModelRef has no registered Model.
	ErrUnknownModel = errors.New("orchestra: unknown model")

	// ErrUnknownAgent is returned when looking up an agent name that is not in the registry.
	ErrUnknownAgent = errors.New("orchestra: unknown agent")

	// ErrEmptyResponse is returned when a model returns neither content nor tool calls
	// where an answer is required.
	ErrEmptyResponse = errors.New("orchestra: empty model response")

	// ErrSchemaMismatch is returned when a reply requested with WithSchema is not JSON
	// or does not satisfy the schema.
	ErrSchemaMismatch = errors.New("orchestra: reply does not match output schema")
)

// DispatchError carries the underlying model failure of a routing attempt.
type DispatchError struct {
	Strategy string
	Err      error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("orchestra: dispatch failure (%s): %v", e.Strategy, e.Err)
}

// Is makes errors.Is(err, ErrDispatchFailure) hold.
func (e *DispatchError) Is(target error) bool {
	return target == ErrDispatchFailure
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// IterationLimitError is returned by the tool loop when the ceiling is hit. Transcript
// holds everything accumulated so far, including the final unanswered tool request.
type IterationLimitError struct {
	MaxIterations int
	Transcript    *Transcript
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("orchestra: iteration limit exceeded: %d reasoning steps", e.MaxIterations)
}

// Is makes errors.Is(err, ErrIterationLimitExceeded) hold.
func (e *IterationLimitError) Is(target error) bool {
	return target == ErrIterationLimitExceeded
}

// ToolError is a failed tool invocation. The tool loop records it in the transcript
// instead of returning it.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError carries a structured reply that failed validation. Content is the
// reply as the model sent it.
type SchemaMismatchError struct {
	Content string
	Err     error
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("orchestra: reply does not match output schema: %v", e.Err)
}

// Is makes errors.Is(err, ErrSchemaMismatch) hold.
func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

func (e *SchemaMismatchError) Unwrap() error {
	return e.Err
}
