package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rickchristie/orchestra/catalog"
	"github.com/rickchristie/orchestra/structured"
	"github.com/spf13/cobra"
)

const (
	modeRoute      = "route"
	modeAsk        = "ask"
	modeTools      = "tools"
	modeCritique   = "critique"
	modeStructured = "structured"
)

var modes = []string{modeRoute, modeAsk, modeTools, modeCritique, modeStructured}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "orchestra",
		Short:         "Route requests to persona agents and run tool and critique loops",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.catalogPath, "catalog", "c", "", "catalog YAML file (default: built-in personas)")
	flags.StringVar(&opts.baseURL, "base-url", envOr("ORCHESTRA_BASE_URL", "http://localhost:11434/v1"), "OpenAI-compatible endpoint")
	flags.StringVar(&opts.apiKey, "api-key", envOr("ORCHESTRA_API_KEY", "ollama"), "API key for the endpoint")
	flags.StringVar(&opts.logFile, "log-file", "", "write a detailed trace of every call to this file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every model and tool call to stderr")
	flags.BoolVar(&opts.trace, "trace", false, "export OpenTelemetry spans to the log file or stderr")
	flags.Float64Var(&opts.rps, "rps", 0, "maximum model calls per second (0: unlimited)")
	flags.StringVar(&opts.structuredModel, "structured-model", structured.DefaultModel, "model for the structured mode")

	for _, mode := range modes {
		root.AddCommand(modeCmd(mode, &opts))
	}
	root.AddCommand(chatCmd(&opts))
	root.AddCommand(catalogCmd())
	return root
}

func modeCmd(mode string, opts *options) *cobra.Command {
	short := map[string]string{
		modeRoute:      "Show which agent would handle a request and why",
		modeAsk:        "Route a request and answer it with the selected agent",
		modeTools:      "Route a request and answer it with calculator tools available",
		modeCritique:   "Refine an answer with a solver and a judge",
		modeStructured: "Answer weather, project or person questions as validated JSON",
	}[mode]

	return &cobra.Command{
		Use:   mode + " <request>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, mode, strings.Join(args, " "))
		},
	}
}

func chatCmd(opts *options) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive session; switch modes with /route, /ask, /tools, /critique, /structured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()
			return a.repl(mode)
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", modeAsk, "initial mode: "+strings.Join(modes, ", "))
	return cmd
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the built-in catalog as a starting point for --catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(catalog.DefaultYAML())
			return err
		},
	}
}

// run executes one request in the given mode.
func (a *app) run(ctx context.Context, mode, request string) error {
	switch mode {
	case modeRoute:
		return a.runRoute(ctx, request)
	case modeAsk:
		return a.runAsk(ctx, request, false)
	case modeTools:
		return a.runAsk(ctx, request, true)
	case modeCritique:
		return a.runCritique(ctx, request)
	case modeStructured:
		return a.runStructured(ctx, request)
	default:
		return fmt.Errorf("unknown mode %q (want one of %s)", mode, strings.Join(modes, ", "))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
