package calculator

import (
	"context"
	"errors"
	"testing"

	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChain(t *testing.T) *toolchain.Chain {
	t.Helper()
	c := toolchain.New()
	for _, tool := range All() {
		require.NoError(t, c.Register(tool))
	}
	return c
}

func TestTools_Execute(t *testing.T) {
	type input struct {
		tool string
		args map[string]any
	}

	type expected struct {
		result      string
		errIs       error
		errContains string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "add",
			input:    input{tool: "add", args: map[string]any{"a": 15.0, "b": 25.0}},
			expected: expected{result: "40"},
		},
		{
			name:     "subtract to negative",
			input:    input{tool: "subtract", args: map[string]any{"a": 3.0, "b": 10.0}},
			expected: expected{result: "-7"},
		},
		{
			name:     "multiply fractions",
			input:    input{tool: "multiply", args: map[string]any{"a": 2.5, "b": 4.0}},
			expected: expected{result: "10"},
		},
		{
			name:     "divide",
			input:    input{tool: "divide", args: map[string]any{"a": 40.0, "b": 2.0}},
			expected: expected{result: "20"},
		},
		{
			name:     "divide non-terminating",
			input:    input{tool: "divide", args: map[string]any{"a": 1.0, "b": 4.0}},
			expected: expected{result: "0.25"},
		},
		{
			name:     "divide by zero",
			input:    input{tool: "divide", args: map[string]any{"a": 10.0, "b": 0.0}},
			expected: expected{errIs: ErrDivideByZero, errContains: `tool "divide": cannot divide by zero`},
		},
		{
			name:     "missing operand",
			input:    input{tool: "add", args: map[string]any{"a": 1.0}},
			expected: expected{errIs: orchestra.ErrInvalidToolArgs},
		},
		{
			name:     "operand of wrong type",
			input:    input{tool: "multiply", args: map[string]any{"a": "two", "b": 3.0}},
			expected: expected{errIs: orchestra.ErrInvalidToolArgs},
		},
		{
			name: "evaluate expression",
			input: input{tool: "evaluate", args: map[string]any{
				"expression": "(15 + 25) / 2 * 3",
			}},
			expected: expected{result: "60"},
		},
		{
			name: "evaluate with params",
			input: input{tool: "evaluate", args: map[string]any{
				"expression": "x * y + 1",
				"params":     map[string]any{"x": 3.0, "y": 4.0},
			}},
			expected: expected{result: "13"},
		},
		{
			name:     "evaluate function",
			input:    input{tool: "evaluate", args: map[string]any{"expression": "sqrt(16) + pow(2, 3)"}},
			expected: expected{result: "12"},
		},
		{
			name:     "evaluate division by zero",
			input:    input{tool: "evaluate", args: map[string]any{"expression": "1 / 0"}},
			expected: expected{errIs: ErrDivideByZero},
		},
		{
			name:     "evaluate empty expression",
			input:    input{tool: "evaluate", args: map[string]any{"expression": ""}},
			expected: expected{errIs: orchestra.ErrInvalidToolArgs},
		},
		{
			name:     "evaluate malformed expression",
			input:    input{tool: "evaluate", args: map[string]any{"expression": "2 +"}},
			expected: expected{errContains: `tool "evaluate"`},
		},
	}

	c := newChain(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := c.Execute(context.Background(), orchestra.ToolCallRequest{
				ID:        "call-1",
				Name:      tc.input.tool,
				Arguments: tc.input.args,
			})

			if tc.expected.errIs == nil && tc.expected.errContains == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.expected.result, result)
				return
			}

			require.Error(t, err)
			var toolErr *orchestra.ToolError
			assert.True(t, errors.As(err, &toolErr), "expected *orchestra.ToolError, got %T", err)
			if tc.expected.errIs != nil {
				assert.ErrorIs(t, err, tc.expected.errIs)
			}
			if tc.expected.errContains != "" {
				assert.Contains(t, err.Error(), tc.expected.errContains)
			}
		})
	}
}

func TestEval_Constants(t *testing.T) {
	type expected struct {
		value float64
	}

	tests := []struct {
		name     string
		input    string
		params   map[string]any
		expected expected
	}{
		{
			name:     "pi",
			input:    "pi * 2",
			expected: expected{value: 6.283185307179586},
		},
		{
			name:     "params override constants",
			input:    "e + 1",
			params:   map[string]any{"e": 1.0},
			expected: expected{value: 2},
		},
		{
			name:     "max of many",
			input:    "max(3, 9, 4)",
			expected: expected{value: 9},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Eval(tc.input, tc.params)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected.value, got, 1e-9)
		})
	}
}

func TestEval_NonFinite(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		params   map[string]any
		expected error
	}{
		{name: "literal zero divisor", input: "1 / 0", expected: ErrDivideByZero},
		{name: "zero divided by zero", input: "0 / 0", expected: ErrDivideByZero},
		{name: "computed zero divisor", input: "10 / (3 - 3) + 1", expected: ErrDivideByZero},
		{name: "function zero divisor", input: "2 / abs(0)", expected: ErrDivideByZero},
		{name: "variable zero divisor", input: "x / y", params: map[string]any{"x": 1.0, "y": 0.0}, expected: ErrDivideByZero},
		{name: "modulus by zero", input: "5 % 0", expected: ErrDivideByZero},
		{name: "overflow from pow", input: "pow(10, 400)", expected: ErrOverflow},
		{name: "overflow from exponent", input: "2 ** 2048", expected: ErrOverflow},
		{name: "overflow with non-zero divisor", input: "pow(10, 400) / 2", expected: ErrOverflow},
		{name: "undefined result", input: "sqrt(-1)", expected: ErrNotANumber},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Eval(tc.input, tc.params)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestAll_Names(t *testing.T) {
	var names []string
	for _, tool := range All() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"add", "subtract", "multiply", "divide", "evaluate"}, names)
	assert.Len(t, Basic(), 4)
}
