package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	type input struct {
		raw map[string]any
	}

	type expected struct {
		isNil  bool
		hasErr bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "nil schema compiles to nil",
			input:    input{raw: nil},
			expected: expected{isNil: true},
		},
		{
			name: "valid schema compiles",
			input: input{raw: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"a": map[string]any{"type": "number"},
				},
			}},
			expected: expected{isNil: false},
		},
		{
			name:     "invalid type keyword fails",
			input:    input{raw: map[string]any{"type": 42}},
			expected: expected{isNil: true, hasErr: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Compile(tc.input.raw)

			if tc.expected.hasErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tc.expected.isNil {
				assert.Nil(t, s)
			} else {
				require.NotNil(t, s)
				assert.Equal(t, tc.input.raw, s.Raw())
			}
		})
	}
}

func TestCompileJSON(t *testing.T) {
	s, err := CompileJSON([]byte(`{"type":"object","required":["name"]}`))
	require.NoError(t, err)

	assert.Equal(t, "object", s.Raw()["type"])
	assert.NoError(t, s.Validate(map[string]any{"name": "dr_code"}))
	assert.Error(t, s.Validate(map[string]any{}))

	_, err = CompileJSON([]byte(`{not json`))
	assert.Error(t, err)
}

func TestSchema_Validate(t *testing.T) {
	operands := MustCompile(Object(map[string]*Property{
		"a": Number("First operand"),
		"b": Number("Second operand"),
	}, "a", "b"))

	type input struct {
		value any
	}

	type expected struct {
		hasErr bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "float arguments",
			input:    input{value: map[string]any{"a": 15.0, "b": 27.5}},
			expected: expected{hasErr: false},
		},
		{
			name:     "go integers are numbers",
			input:    input{value: map[string]any{"a": 15, "b": int64(27)}},
			expected: expected{hasErr: false},
		},
		{
			name: "struct value",
			input: input{value: struct {
				A float64 `json:"a"`
				B float64 `json:"b"`
			}{A: 1, B: 2}},
			expected: expected{hasErr: false},
		},
		{
			name:     "missing required",
			input:    input{value: map[string]any{"a": 1}},
			expected: expected{hasErr: true},
		},
		{
			name:     "wrong type",
			input:    input{value: map[string]any{"a": "fifteen", "b": 2}},
			expected: expected{hasErr: true},
		},
		{
			name:     "not encodable",
			input:    input{value: map[string]any{"a": make(chan int)}},
			expected: expected{hasErr: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := operands.Validate(tc.input.value)

			if tc.expected.hasErr {
				var verr *ValidationError
				assert.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSchema_Validate_NilSchema(t *testing.T) {
	var s *Schema
	assert.NoError(t, s.Validate(map[string]any{"anything": true}))
	assert.Nil(t, s.Raw())
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile(map[string]any{"type": 42})
	})
}

func TestProperty_Build(t *testing.T) {
	type expected struct {
		built map[string]any
	}

	tests := []struct {
		name     string
		input    *Property
		expected expected
	}{
		{
			name:  "string with constraints",
			input: String("Agent name").MinLength(1).MaxLength(64).Pattern("^[a-z_]+$"),
			expected: expected{built: map[string]any{
				"type":        "string",
				"description": "Agent name",
				"minLength":   1,
				"maxLength":   64,
				"pattern":     "^[a-z_]+$",
			}},
		},
		{
			name:  "integer with bounds and default",
			input: Integer("Attempts").Min(1).Max(10).Default(3),
			expected: expected{built: map[string]any{
				"type":        "integer",
				"description": "Attempts",
				"minimum":     float64(1),
				"maximum":     float64(10),
				"default":     3,
			}},
		},
		{
			name:  "enum",
			input: String("Strategy").Enum("keyword", "model"),
			expected: expected{built: map[string]any{
				"type":        "string",
				"description": "Strategy",
				"enum":        []any{"keyword", "model"},
			}},
		},
		{
			name:  "array",
			input: Array("Keywords", map[string]any{"type": "string"}),
			expected: expected{built: map[string]any{
				"type":        "array",
				"description": "Keywords",
				"items":       map[string]any{"type": "string"},
			}},
		},
		{
			name:  "boolean without description",
			input: Boolean(""),
			expected: expected{built: map[string]any{
				"type": "boolean",
			}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected.built, tc.input.build())
		})
	}
}

func TestObject(t *testing.T) {
	obj := Object(map[string]*Property{
		"expression": String("Arithmetic expression"),
	}, "expression")

	assert.Equal(t, "object", obj["type"])
	assert.Equal(t, []string{"expression"}, obj["required"])
	props, ok := obj["properties"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, props, 1)

	noRequired := Object(map[string]*Property{})
	_, has := noRequired["required"]
	assert.False(t, has)
}

func TestValidationError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ValidationError{Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "schema validation failed: boom", err.Error())
}

func TestSchema_DecodeJSON(t *testing.T) {
	s := MustCompile(Object(map[string]*Property{
		"condition": String("Current weather condition").Enum("sunny", "cloudy"),
		"humidity":  Integer("Humidity percentage").Min(0).Max(100),
	}, "condition"))

	type expected struct {
		value any
		err   bool
	}

	tests := []struct {
		name     string
		input    string
		expected expected
	}{
		{
			name:     "plain document",
			input:    `{"condition": "sunny", "humidity": 40}`,
			expected: expected{value: map[string]any{"condition": "sunny", "humidity": 40.0}},
		},
		{
			name:     "fenced document",
			input:    "```json\n{\"condition\": \"cloudy\"}\n```",
			expected: expected{value: map[string]any{"condition": "cloudy"}},
		},
		{
			name:     "value outside enum",
			input:    `{"condition": "foggy"}`,
			expected: expected{err: true},
		},
		{
			name:     "value above maximum",
			input:    `{"condition": "sunny", "humidity": 140}`,
			expected: expected{err: true},
		},
		{
			name:     "prose",
			input:    "The weather is sunny.",
			expected: expected{err: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.DecodeJSON(tc.input)
			if tc.expected.err {
				var verr *ValidationError
				assert.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected.value, got)
		})
	}
}

func TestTrimFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "no fence", input: "  {\"a\": 1}\n", expected: `{"a": 1}`},
		{name: "language tag", input: "```json\n{\"a\": 1}\n```", expected: `{"a": 1}`},
		{name: "bare fence", input: "```\n[1, 2]\n```", expected: `[1, 2]`},
		{name: "single line", input: "```{\"a\": 1}```", expected: `{"a": 1}`},
		{name: "unterminated", input: "```json\n{", expected: "```json\n{"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, TrimFence(tc.input))
		})
	}
}
