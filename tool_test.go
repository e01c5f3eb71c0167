package orchestra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringer struct{}

func (stringer) String() string { return "stringer" }

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "nil", input: nil, expected: ""},
		{name: "string", input: "hello", expected: "hello"},
		{name: "bytes", input: []byte("raw"), expected: "raw"},
		{name: "whole float", input: 40.0, expected: "40"},
		{name: "fraction", input: 0.25, expected: "0.25"},
		{name: "negative", input: -7.5, expected: "-7.5"},
		{name: "float32", input: float32(1.5), expected: "1.5"},
		{name: "int", input: 42, expected: "42"},
		{name: "bool", input: true, expected: "true"},
		{name: "stringer", input: stringer{}, expected: "stringer"},
		{name: "duration is a stringer", input: 2 * time.Second, expected: "2s"},
		{name: "error", input: errors.New("boom"), expected: "boom"},
		{
			name:     "struct as yaml",
			input:    struct{ Total int `yaml:"total"` }{Total: 3},
			expected: "total: 3",
		},
		{
			name:     "map as yaml",
			input:    map[string]any{"a": 1, "b": "x"},
			expected: "a: 1\nb: x",
		},
		{
			name:     "slice as yaml",
			input:    []string{"one", "two"},
			expected: "- one\n- two",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatResult(tc.input))
		})
	}
}

type sumInput struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

func TestToolFunc_Call(t *testing.T) {
	type expected struct {
		result string
		errIs  error
		errMsg string
	}

	tests := []struct {
		name     string
		input    map[string]any
		fn       func(ctx context.Context, in sumInput) (float64, error)
		expected expected
	}{
		{
			name:  "decodes arguments",
			input: map[string]any{"a": 15.0, "b": 25.0},
			fn: func(_ context.Context, in sumInput) (float64, error) {
				return in.A + in.B, nil
			},
			expected: expected{result: "40"},
		},
		{
			name:  "no arguments gives zero input",
			input: nil,
			fn: func(_ context.Context, in sumInput) (float64, error) {
				return in.A + in.B, nil
			},
			expected: expected{result: "0"},
		},
		{
			name:  "undecodable arguments",
			input: map[string]any{"a": "fifteen"},
			fn: func(_ context.Context, in sumInput) (float64, error) {
				return 0, nil
			},
			expected: expected{errIs: ErrInvalidToolArgs},
		},
		{
			name:  "function error is returned as is",
			input: map[string]any{"a": 1.0, "b": 0.0},
			fn: func(_ context.Context, in sumInput) (float64, error) {
				return 0, errors.New("cannot divide by zero")
			},
			expected: expected{errMsg: "cannot divide by zero"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tool := NewToolFunc("sum", "Sum two numbers", nil, tc.fn)
			got, err := tool.Call(context.Background(), tc.input)

			switch {
			case tc.expected.errIs != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expected.errIs)
			case tc.expected.errMsg != "":
				require.Error(t, err)
				assert.Equal(t, tc.expected.errMsg, err.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.expected.result, got)
			}
		})
	}
}

func TestSpecOf(t *testing.T) {
	params := map[string]any{"type": "object"}
	tool := NewToolFunc("sum", "Sum two numbers", params,
		func(_ context.Context, in sumInput) (float64, error) { return 0, nil })

	assert.Equal(t, ToolSpec{Name: "sum", Description: "Sum two numbers", Parameters: params}, SpecOf(tool))
}
