// Package toolchain holds the tools offered to a model and executes its tool calls.
//
// # Overview
//
// A Chain is responsible for:
//  1. Describing the registered tools to the model as orchestra.ToolSpec values
//  2. Looking up the tool named by each tool call
//  3. Validating the call arguments against the tool's JSON Schema
//  4. Running the tool and capturing any failure as an *orchestra.ToolError
//
// Failures never escape Execute as panics. Unknown tools, invalid arguments, tool
// errors and tool panics are all returned as *orchestra.ToolError, which the tool loop
// turns into the content of the tool message so the model can react to them.
//
// # Example Usage
//
//	chain := toolchain.New().
//	    MustRegister(calculator.Add()).
//	    MustRegister(calculator.Divide())
//
//	result, err := chain.Execute(ctx, orchestra.ToolCallRequest{
//	    ID:        "call_1",
//	    Name:      "divide",
//	    Arguments: map[string]any{"a": 10, "b": 0},
//	})
//	// err: tool "divide": cannot divide by zero
//
// Use [Chain.Specs] to advertise the tools to a model via orchestra.WithTools.
package toolchain
