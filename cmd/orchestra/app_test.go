package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/catalog"
	"github.com/rickchristie/orchestra/hooks"
	"github.com/rickchristie/orchestra/internal/tt"
	"github.com/rickchristie/orchestra/models"
	"github.com/rickchristie/orchestra/structured"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(set orchestra.ModelSet) (*app, *bytes.Buffer) {
	var out bytes.Buffer
	return &app{
		cfg:             catalog.Default(),
		models:          set,
		hooks:           hooks.NewRegistry(),
		out:             &out,
		shutdown:        func(context.Context) error { return nil },
		structuredModel: structured.DefaultModel,
	}, &out
}

func TestNewApp(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")
	a, err := newApp(options{
		baseURL: "http://localhost:11434/v1",
		apiKey:  "ollama",
		logFile: logFile,
		trace:   true,
	}, &bytes.Buffer{})
	require.NoError(t, err)
	defer a.close()

	for _, ref := range []string{"gpt-oss:20b", "mistral", "gemma3:1b"} {
		m, err := a.models.Resolve(ref)
		require.NoError(t, err, ref)
		assert.IsType(t, &models.Guard{}, m)
	}
	assert.Equal(t, 3, a.hooks.Len())
}

func TestNewApp_StructuredModel(t *testing.T) {
	a, err := newApp(options{apiKey: "ollama", structuredModel: "llama3.2"}, &bytes.Buffer{})
	require.NoError(t, err)
	defer a.close()

	_, err = a.models.Resolve("llama3.2")
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", a.structuredModel)
}

func TestNewApp_MissingCatalog(t *testing.T) {
	_, err := newApp(options{catalogPath: filepath.Join(t.TempDir(), "nope.yaml"), apiKey: "x"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestApp_Run(t *testing.T) {
	type expected struct {
		output      []string
		errContains string
	}

	tests := []struct {
		name     string
		mode     string
		request  string
		models   func() orchestra.ModelSet
		expected expected
	}{
		{
			name:    "route falls back to keywords when the controller is down",
			mode:    modeRoute,
			request: "Tell me a funny joke about cats",
			models: func() orchestra.ModelSet {
				return orchestra.ModelSet{"gemma3:1b": tt.NewMockModel().AddError(errors.New("connection refused"))}
			},
			expected: expected{output: []string{"Witty Comedian", "Strategy:\033[0m keyword", "witty_comedian=3"}},
		},
		{
			name:    "ask through the controller model",
			mode:    modeAsk,
			request: "Write a short poem about rain",
			models: func() orchestra.ModelSet {
				return orchestra.ModelSet{
					"gemma3:1b": tt.NewMockModel().AddResponse("SELECTED_AGENT: creative_writer\nREASONING: Poetry request."),
					"mistral":   tt.NewMockModel().AddResponse("Rain taps softly on the glass."),
				}
			},
			expected: expected{output: []string{"Creative Writer", "Poetry request.", "Rain taps softly on the glass."}},
		},
		{
			name:    "tools",
			mode:    modeTools,
			request: "Use code to add 2 and 3",
			models: func() orchestra.ModelSet {
				return orchestra.ModelSet{
					"gemma3:1b": tt.NewMockModel().AddResponse("SELECTED_AGENT: dr_code\nREASONING: Technical."),
					"gpt-oss:20b": tt.NewMockModel().
						AddToolCalls("", orchestra.ToolCallRequest{ID: "c1", Name: "add", Arguments: map[string]any{"a": 2.0, "b": 3.0}}).
						AddResponse("2 + 3 = 5"),
				}
			},
			expected: expected{output: []string{"Dr. Code", "Tool calls:\033[0m 1 in 2 reasoning steps", "2 + 3 = 5"}},
		},
		{
			name:    "critique",
			mode:    modeCritique,
			request: "Explain recursion",
			models: func() orchestra.ModelSet {
				return orchestra.ModelSet{
					"gpt-oss:20b": tt.NewMockModel().AddResponse("It calls itself.").AddResponse("A function that calls itself on a smaller input."),
					"mistral": tt.NewMockModel().
						AddResponse("DECISION: FAIL\nREASONING: Too vague.\nFEEDBACK: Mention the base case.").
						AddResponse("DECISION: PASS\nREASONING: Clear.\nFEEDBACK: None needed"),
				}
			},
			expected: expected{output: []string{"Attempt 1:", "Mention the base case.", "Attempt 2:", "approved after 2 attempt(s)"}},
		},
		{
			name:    "structured weather report",
			mode:    modeStructured,
			request: "What's the weather like in Paris?",
			models: func() orchestra.ModelSet {
				return orchestra.ModelSet{"mistral": tt.NewMockModel().AddResponse(
					`{"location": "Paris", "condition": "sunny", "temperature": 72, "description": "Clear skies."}`)}
			},
			expected: expected{output: []string{"Weather Assistant", "condition: sunny", "temperature: 72", "location: Paris"}},
		},
		{
			name:    "structured reply that breaks the schema",
			mode:    modeStructured,
			request: "What's the weather like in Paris?",
			models: func() orchestra.ModelSet {
				return orchestra.ModelSet{"mistral": tt.NewMockModel().AddResponse(`{"location": "Paris"}`)}
			},
			expected: expected{errContains: "reply does not match output schema"},
		},
		{
			name:     "unknown mode",
			mode:     "dance",
			models:   func() orchestra.ModelSet { return orchestra.ModelSet{} },
			expected: expected{errContains: `unknown mode "dance"`},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, out := testApp(tc.models())

			err := a.run(context.Background(), tc.mode, tc.request)
			if tc.expected.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expected.errContains)
				return
			}
			require.NoError(t, err)
			for _, want := range tc.expected.output {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestCatalogCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"catalog"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, string(catalog.DefaultYAML()), out.String())

	_, err := catalog.Parse(out.Bytes())
	require.NoError(t, err)
}
