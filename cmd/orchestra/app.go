package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/agents/critique"
	"github.com/rickchristie/orchestra/agents/toolloop"
	"github.com/rickchristie/orchestra/catalog"
	"github.com/rickchristie/orchestra/controller"
	"github.com/rickchristie/orchestra/hooks"
	"github.com/rickchristie/orchestra/hooks/otelhook"
	"github.com/rickchristie/orchestra/loggers"
	"github.com/rickchristie/orchestra/models"
	"github.com/rickchristie/orchestra/router"
	"github.com/rickchristie/orchestra/structured"
	"github.com/rickchristie/orchestra/toolchain"
	"github.com/rickchristie/orchestra/tools/calculator"
	"github.com/tmc/langchaingo/llms/openai"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// options are the persistent command-line flags.
type options struct {
	catalogPath string
	baseURL     string
	apiKey      string
	logFile     string
	verbose     bool
	trace       bool
	rps         float64

	structuredModel string
}

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg      *catalog.Config
	models   orchestra.ModelSet
	hooks    *hooks.Registry
	out      io.Writer
	shutdown func(context.Context) error

	// structuredModel runs the agents of the structured mode.
	structuredModel string
}

func newApp(opts options, out io.Writer) (*app, error) {
	cfg := catalog.Default()
	if opts.catalogPath != "" {
		var err error
		if cfg, err = catalog.Load(opts.catalogPath); err != nil {
			return nil, err
		}
	}

	a := &app{
		cfg:             cfg,
		hooks:           hooks.NewRegistry(),
		out:             out,
		shutdown:        func(context.Context) error { return nil },
		structuredModel: opts.structuredModel,
	}
	if a.structuredModel == "" {
		a.structuredModel = structured.DefaultModel
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	a.hooks.Register(loggers.NewSlogHook(logger))

	var traceOut io.Writer = os.Stderr
	if opts.logFile != "" {
		f, err := os.Create(opts.logFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		a.hooks.Register(loggers.NewLoggerHookWithWriter(f))
		a.shutdown = chainShutdown(a.shutdown, func(context.Context) error { return f.Close() })
		traceOut = f
	}

	if opts.trace {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(traceOut), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exporter),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		a.hooks.Register(otelhook.New(tp))
		a.shutdown = chainShutdown(a.shutdown, tp.Shutdown)
	}

	refs := cfg.ModelRefs()
	if !slices.Contains(refs, a.structuredModel) {
		refs = append(refs, a.structuredModel)
	}
	set, err := openAIModels(opts.baseURL, opts.apiKey, refs)
	if err != nil {
		return nil, err
	}
	a.models = models.GuardSet(set, models.GuardConfig{RequestsPerSecond: opts.rps, Burst: 1}, logger)
	return a, nil
}

// openAIModels creates one LangChainGo client per model reference. With Ollama the
// reference is the model name, for example "gpt-oss:20b".
func openAIModels(baseURL, apiKey string, refs []string) (orchestra.ModelSet, error) {
	set := make(orchestra.ModelSet, len(refs))
	for _, ref := range refs {
		llm, err := openai.New(
			openai.WithBaseURL(baseURL),
			openai.WithToken(apiKey),
			openai.WithModel(ref),
		)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", ref, err)
		}
		set[ref] = models.NewLCGWrapper(llm).WithModelName(ref)
	}
	return set, nil
}

func chainShutdown(first, next func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		err := next(ctx)
		if ferr := first(ctx); err == nil {
			err = ferr
		}
		return err
	}
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.shutdown(ctx)
}

func (a *app) router() (router.Router, error) {
	return a.cfg.Router(a.models, a.hooks)
}

func (a *app) toolLoop() *toolloop.Loop {
	chain := toolchain.New()
	for _, t := range calculator.All() {
		chain.MustRegister(t)
	}
	return a.cfg.NewToolLoop(a.models, chain, a.hooks)
}

func (a *app) controller(withTools bool) (*controller.Controller, error) {
	r, err := a.router()
	if err != nil {
		return nil, err
	}
	c := controller.New(r, a.models).WithHooks(a.hooks)
	if withTools {
		c = c.WithToolLoop(a.toolLoop())
	}
	return c, nil
}

func (a *app) structuredController() *controller.Controller {
	return structured.NewController(a.models, a.structuredModel, a.hooks)
}

func (a *app) critiqueLoop() (*critique.Loop, error) {
	return a.cfg.NewCritiqueLoop(a.models, a.hooks)
}
