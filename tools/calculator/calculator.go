// Package calculator provides arithmetic tools for the tool loop.
//
// [Add], [Subtract], [Multiply] and [Divide] take two numbers "a" and "b".
// [Evaluate] takes a free-form expression such as "(15 + 25) / 2 * 3" and is backed
// by govaluate. Register them with a toolchain:
//
//	chain := toolchain.New()
//	for _, t := range calculator.All() {
//	    chain.MustRegister(t)
//	}
package calculator

import (
	"context"
	"errors"

	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/schema"
)

var (
	// ErrDivideByZero is returned by Divide and Evaluate when the divisor is zero.
	ErrDivideByZero = errors.New("cannot divide by zero")

	// ErrOverflow is returned by Evaluate when the result is too large to represent.
	ErrOverflow = errors.New("result is out of range")

	// ErrNotANumber is returned by Evaluate when the result is undefined, as in sqrt(-1).
	ErrNotANumber = errors.New("result is not a number")
)

// Operands is the input of the binary arithmetic tools.
type Operands struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

func operandSchema(a, b string) map[string]any {
	return schema.Object(map[string]*schema.Property{
		"a": schema.Number(a),
		"b": schema.Number(b),
	}, "a", "b")
}

// Add returns the "add" tool.
func Add() *orchestra.ToolFunc[Operands, float64] {
	return orchestra.NewToolFunc(
		"add",
		"Add two numbers together and return the sum of a and b.",
		operandSchema("First number to add", "Second number to add"),
		func(_ context.Context, in Operands) (float64, error) {
			return in.A + in.B, nil
		},
	)
}

// Subtract returns the "subtract" tool.
func Subtract() *orchestra.ToolFunc[Operands, float64] {
	return orchestra.NewToolFunc(
		"subtract",
		"Subtract the second number from the first number and return a minus b.",
		operandSchema("Number to subtract from", "Number to subtract"),
		func(_ context.Context, in Operands) (float64, error) {
			return in.A - in.B, nil
		},
	)
}

// Multiply returns the "multiply" tool.
func Multiply() *orchestra.ToolFunc[Operands, float64] {
	return orchestra.NewToolFunc(
		"multiply",
		"Multiply two numbers together and return the product of a and b.",
		operandSchema("First number to multiply", "Second number to multiply"),
		func(_ context.Context, in Operands) (float64, error) {
			return in.A * in.B, nil
		},
	)
}

// Divide returns the "divide" tool. A zero divisor is a tool error.
func Divide() *orchestra.ToolFunc[Operands, float64] {
	return orchestra.NewToolFunc(
		"divide",
		"Divide the first number by the second number and return a divided by b.",
		operandSchema("Number to be divided (dividend)", "Number to divide by (divisor)"),
		func(_ context.Context, in Operands) (float64, error) {
			if in.B == 0 {
				return 0, ErrDivideByZero
			}
			return in.A / in.B, nil
		},
	)
}

// Basic returns the four binary arithmetic tools.
func Basic() []orchestra.Tool {
	return []orchestra.Tool{Add(), Subtract(), Multiply(), Divide()}
}

// All returns the four binary arithmetic tools and Evaluate.
func All() []orchestra.Tool {
	return append(Basic(), Evaluate())
}
