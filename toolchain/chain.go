package toolchain

import (
	"context"
	"errors"
	"fmt"

	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/schema"
)

// Chain is an ordered set of tools with compiled argument schemas.
//
// Register all tools before the first Execute. After that a Chain is only read and is
// safe for concurrent use.
type Chain struct {
	tools   []orchestra.Tool
	toolMap map[string]orchestra.Tool
	schemas map[string]*schema.Schema
}

// New creates an empty Chain.
func New() *Chain {
	return &Chain{
		tools:   make([]orchestra.Tool, 0),
		toolMap: make(map[string]orchestra.Tool),
		schemas: make(map[string]*schema.Schema),
	}
}

// Register adds a tool. It fails when the name is empty or already taken, or when the
// parameter schema does not compile.
func (c *Chain) Register(tool orchestra.Tool) error {
	name := tool.Name()
	if name == "" {
		return errors.New("toolchain: tool name must not be empty")
	}
	if _, dup := c.toolMap[name]; dup {
		return fmt.Errorf("toolchain: duplicate tool %q", name)
	}

	compiled, err := schema.Compile(tool.ParameterSchema())
	if err != nil {
		return fmt.Errorf("toolchain: tool %q: %w", name, err)
	}

	c.tools = append(c.tools, tool)
	c.toolMap[name] = tool
	if compiled != nil {
		c.schemas[name] = compiled
	}
	return nil
}

// MustRegister is like Register but panics on error. Returns the chain for chaining.
func (c *Chain) MustRegister(tool orchestra.Tool) *Chain {
	if err := c.Register(tool); err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of registered tools.
func (c *Chain) Len() int {
	return len(c.tools)
}

// Lookup returns the tool registered under name.
func (c *Chain) Lookup(name string) (orchestra.Tool, bool) {
	t, ok := c.toolMap[name]
	return t, ok
}

// Specs returns the specs of all tools in registration order.
func (c *Chain) Specs() []orchestra.ToolSpec {
	specs := make([]orchestra.ToolSpec, len(c.tools))
	for i, t := range c.tools {
		specs[i] = orchestra.SpecOf(t)
	}
	return specs
}

// Execute runs one tool call and returns its string result.
//
// Every failure is returned as an *orchestra.ToolError. Its Err wraps
// orchestra.ErrUnknownTool or orchestra.ErrInvalidToolArgs when the call never
// reached the tool. Context cancellation is not special-cased: a tool that honours ctx
// returns the context error like any other failure.
func (c *Chain) Execute(ctx context.Context, call orchestra.ToolCallRequest) (result string, err error) {
	tool, ok := c.toolMap[call.Name]
	if !ok {
		return "", &orchestra.ToolError{
			Tool: call.Name,
			Err:  fmt.Errorf("%w: %s", orchestra.ErrUnknownTool, call.Name),
		}
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}
	if compiled, has := c.schemas[call.Name]; has {
		if verr := compiled.Validate(args); verr != nil {
			return "", &orchestra.ToolError{
				Tool: call.Name,
				Err:  fmt.Errorf("%w: %w", orchestra.ErrInvalidToolArgs, verr),
			}
		}
	}

	defer func() {
		if r := recover(); r != nil {
			result = ""
			err = &orchestra.ToolError{Tool: call.Name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	out, callErr := tool.Call(ctx, args)
	if callErr != nil {
		return "", &orchestra.ToolError{Tool: call.Name, Err: callErr}
	}
	return out, nil
}
