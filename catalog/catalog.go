// Package catalog loads the agent catalog and orchestration policy from YAML.
//
// A catalog file lists the agents, names the default one and configures the router,
// the tool loop and the critique loop:
//
//	default_agent: dr_code
//	routing:
//	  strategy: model_with_fallback
//	  controller_model: gemma3:1b
//	tool_loop:
//	  max_iterations: 10
//	critique:
//	  max_attempts: 3
//	  solver_model: gpt-oss:20b
//	  judge_model: mistral
//	agents:
//	  - name: dr_code
//	    persona: You are Dr. Code...
//	    model: gpt-oss:20b
//	    keywords: [code, python]
//
// Documents are validated against an embedded JSON Schema before they are decoded.
// [Default] returns the built-in four-persona catalog.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/agents/critique"
	"github.com/rickchristie/orchestra/agents/toolloop"
	"github.com/rickchristie/orchestra/hooks"
	"github.com/rickchristie/orchestra/router"
	"github.com/rickchristie/orchestra/schema"
	"github.com/rickchristie/orchestra/toolchain"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

//go:embed default.yaml
var defaultYAML []byte

var documentSchema = mustCompileSchema()

func mustCompileSchema() *schema.Schema {
	s, err := schema.CompileJSON(schemaJSON)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded schema: %v", err))
	}
	return s
}

// Routing strategies accepted in routing.strategy.
const (
	StrategyKeyword           = router.StrategyKeyword
	StrategyModel             = router.StrategyModel
	StrategyModelWithFallback = "model_with_fallback"
)

// Default model references used when the document leaves them out.
const (
	DefaultControllerModel = "controller"
	DefaultSolverModel     = "solver"
	DefaultJudgeModel      = "judge"
)

// ErrMissingModel is returned when a configured model reference is absent from the
// ModelSet handed to a builder.
var ErrMissingModel = errors.New("catalog: model not provided")

// Config is a decoded catalog document.
type Config struct {
	DefaultAgent string                `yaml:"default_agent"`
	Routing      Routing               `yaml:"routing"`
	ToolLoop     ToolLoop              `yaml:"tool_loop"`
	Critique     Critique              `yaml:"critique"`
	Agents       []orchestra.AgentSpec `yaml:"agents"`

	registry *orchestra.Registry
}

// Routing configures the router.
type Routing struct {
	// Strategy is keyword, model or model_with_fallback. Defaults to keyword.
	Strategy          string        `yaml:"strategy"`
	ControllerModel   string        `yaml:"controller_model"`
	ControllerPersona string        `yaml:"controller_persona"`
	CallTimeout       time.Duration `yaml:"call_timeout"`
}

// ToolLoop configures the tool loop.
type ToolLoop struct {
	MaxIterations int           `yaml:"max_iterations"`
	CallTimeout   time.Duration `yaml:"call_timeout"`
}

// Critique configures the critique loop.
type Critique struct {
	MaxAttempts   int           `yaml:"max_attempts"`
	SolverModel   string        `yaml:"solver_model"`
	JudgeModel    string        `yaml:"judge_model"`
	SolverPersona string        `yaml:"solver_persona"`
	JudgePersona  string        `yaml:"judge_persona"`
	CallTimeout   time.Duration `yaml:"call_timeout"`
}

// Load reads and parses the catalog at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, path)
	}
	return cfg, nil
}

// Parse validates and decodes a catalog document, fills in defaults and builds the
// agent registry.
func Parse(data []byte) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: invalid yaml: %w", err)
	}
	if err := documentSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	cfg.applyDefaults()

	registry, err := orchestra.NewRegistry(cfg.DefaultAgent, cfg.Agents...)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	cfg.registry = registry
	return &cfg, nil
}

// MustParse is like Parse but panics on error.
func MustParse(data []byte) *Config {
	cfg, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Default returns the built-in catalog: Dr. Code (the default), Creative Writer,
// Business Analyst and Witty Comedian.
func Default() *Config {
	return MustParse(defaultYAML)
}

// DefaultYAML returns the document behind Default, for use as a starting point.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

func (c *Config) applyDefaults() {
	if c.DefaultAgent == "" && len(c.Agents) > 0 {
		c.DefaultAgent = c.Agents[0].Name
	}
	if c.Routing.Strategy == "" {
		c.Routing.Strategy = StrategyKeyword
	}
	if c.Routing.ControllerModel == "" {
		c.Routing.ControllerModel = DefaultControllerModel
	}
	if c.Routing.ControllerPersona == "" {
		c.Routing.ControllerPersona = router.DefaultControllerPersona
	}
	if c.ToolLoop.MaxIterations == 0 {
		c.ToolLoop.MaxIterations = toolloop.DefaultMaxIterations
	}
	if c.Critique.MaxAttempts == 0 {
		c.Critique.MaxAttempts = critique.DefaultMaxAttempts
	}
	if c.Critique.SolverModel == "" {
		c.Critique.SolverModel = DefaultSolverModel
	}
	if c.Critique.JudgeModel == "" {
		c.Critique.JudgeModel = DefaultJudgeModel
	}
	if c.Critique.SolverPersona == "" {
		c.Critique.SolverPersona = critique.DefaultSolverPersona
	}
	if c.Critique.JudgePersona == "" {
		c.Critique.JudgePersona = critique.DefaultJudgePersona
	}
}

// Registry returns the agent registry built from the document.
func (c *Config) Registry() *orchestra.Registry {
	return c.registry
}

// ModelRefs returns every model reference the catalog uses, agents first, without
// duplicates. Only the references needed by the configured strategy are included.
func (c *Config) ModelRefs() []string {
	var refs []string
	seen := make(map[string]bool)
	add := func(ref string) {
		if ref != "" && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	for _, a := range c.Agents {
		add(a.ModelRef)
	}
	if c.Routing.Strategy != StrategyKeyword {
		add(c.Routing.ControllerModel)
	}
	add(c.Critique.SolverModel)
	add(c.Critique.JudgeModel)
	return refs
}

// Router builds the configured routing strategy. models must provide the controller
// model unless the strategy is keyword.
func (c *Config) Router(models orchestra.ModelSet, h *hooks.Registry) (router.Router, error) {
	keyword := router.NewKeyword(c.registry).WithHooks(h)
	if c.Routing.Strategy == StrategyKeyword {
		return keyword, nil
	}

	controller, err := models.Resolve(c.Routing.ControllerModel)
	if err != nil {
		return nil, fmt.Errorf("%w: routing.controller_model: %w", ErrMissingModel, err)
	}
	model := router.NewModel(c.registry, controller).
		WithModelRef(c.Routing.ControllerModel).
		WithPersona(c.Routing.ControllerPersona).
		WithCallTimeout(c.Routing.CallTimeout).
		WithHooks(h)

	switch c.Routing.Strategy {
	case StrategyModel:
		return model, nil
	case StrategyModelWithFallback:
		return router.WithFallback(model, keyword), nil
	default:
		return nil, fmt.Errorf("catalog: unknown routing strategy %q", c.Routing.Strategy)
	}
}

// NewToolLoop builds a tool loop with the configured ceiling and timeout.
func (c *Config) NewToolLoop(models orchestra.ModelSet, chain *toolchain.Chain, h *hooks.Registry) *toolloop.Loop {
	return toolloop.New(models, chain).
		WithMaxIterations(c.ToolLoop.MaxIterations).
		WithCallTimeout(c.ToolLoop.CallTimeout).
		WithHooks(h)
}

// NewCritiqueLoop builds a critique loop from the configured solver and judge models.
// Pass Critique.MaxAttempts to its Run.
func (c *Config) NewCritiqueLoop(models orchestra.ModelSet, h *hooks.Registry) (*critique.Loop, error) {
	solver, err := models.Resolve(c.Critique.SolverModel)
	if err != nil {
		return nil, fmt.Errorf("%w: critique.solver_model: %w", ErrMissingModel, err)
	}
	judge, err := models.Resolve(c.Critique.JudgeModel)
	if err != nil {
		return nil, fmt.Errorf("%w: critique.judge_model: %w", ErrMissingModel, err)
	}
	return critique.New(solver, judge).
		WithModelRefs(c.Critique.SolverModel, c.Critique.JudgeModel).
		WithSolverPersona(c.Critique.SolverPersona).
		WithJudgePersona(c.Critique.JudgePersona).
		WithCallTimeout(c.Critique.CallTimeout).
		WithHooks(h), nil
}
