package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
)

func (a *app) repl(mode string) error {
	if !slices.Contains(modes, mode) {
		return fmt.Errorf("unknown mode %q (want one of %s)", mode, strings.Join(modes, ", "))
	}

	rl, err := readline.New(prompt(mode))
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(a.out, "%s%sAgents:%s %s\n", colorBold, colorYellow, colorReset,
		strings.Join(a.cfg.Registry().Names(), ", "))
	fmt.Fprintf(a.out, "%sCommands: /%s to switch mode, q to quit%s\n\n",
		colorDim, strings.Join(modes, " /"), colorReset)

	for {
		input, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Fprintf(a.out, "\n%sGoodbye!%s\n", colorGreen, colorReset)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		switch {
		case input == "":
			continue
		case input == "q" || input == "Q":
			fmt.Fprintf(a.out, "%sGoodbye!%s\n", colorGreen, colorReset)
			return nil
		case strings.HasPrefix(input, "/"):
			next := strings.TrimPrefix(input, "/")
			if !slices.Contains(modes, next) {
				fmt.Fprintf(a.out, "%sUnknown mode. Use one of: %s%s\n", colorRed, strings.Join(modes, ", "), colorReset)
				continue
			}
			mode = next
			rl.SetPrompt(prompt(mode))
			continue
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		if err := a.run(ctx, mode, input); err != nil {
			fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		}
		stop()
		fmt.Fprintf(a.out, "\n%s%s%s\n\n", colorDim, strings.Repeat("-", 60), colorReset)
	}
}

func prompt(mode string) string {
	return colorCyan + mode + "> " + colorReset
}
