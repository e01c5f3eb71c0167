package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rickchristie/orchestra/agents/critique"
	"github.com/rickchristie/orchestra/router"
	"gopkg.in/yaml.v3"
)

func (a *app) printDecision(d *router.Decision) {
	fmt.Fprintf(a.out, "%s%sSelected Agent:%s %s\n", colorBold, colorYellow, colorReset, d.Selected.DisplayName())
	fmt.Fprintf(a.out, "%sModel:%s %s\n", colorDim, colorReset, d.Selected.ModelRef)
	fmt.Fprintf(a.out, "%sStrategy:%s %s\n", colorDim, colorReset, d.Strategy)
	fmt.Fprintf(a.out, "%sReasoning:%s %s\n", colorDim, colorReset, d.Reasoning)
	if len(d.Scores) > 0 {
		names := make([]string, 0, len(d.Scores))
		for name := range d.Scores {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = fmt.Sprintf("%s=%d", name, d.Scores[name])
		}
		fmt.Fprintf(a.out, "%sScores:%s %s\n", colorDim, colorReset, strings.Join(parts, " "))
	}
	if d.Fallback {
		fmt.Fprintf(a.out, "%sNo confident choice; default agent used.%s\n", colorYellow, colorReset)
	}
}

func (a *app) runRoute(ctx context.Context, request string) error {
	r, err := a.router()
	if err != nil {
		return err
	}
	d, err := r.Route(ctx, request)
	if err != nil {
		return err
	}
	a.printDecision(d)
	return nil
}

func (a *app) runAsk(ctx context.Context, request string, withTools bool) error {
	c, err := a.controller(withTools)
	if err != nil {
		return err
	}
	res, err := c.Handle(ctx, request)
	if res != nil && res.Decision != nil {
		a.printDecision(res.Decision)
		fmt.Fprintf(a.out, "%s%s%s\n", colorDim, strings.Repeat("-", 70), colorReset)
	}
	if err != nil {
		return err
	}
	if res.ToolRun != nil {
		fmt.Fprintf(a.out, "%sTool calls:%s %d in %d reasoning steps\n",
			colorDim, colorReset, res.ToolRun.ToolCalls, res.ToolRun.Iterations)
	}
	fmt.Fprintf(a.out, "%s%s%s\n", colorWhite, res.Answer, colorReset)
	return nil
}

func (a *app) runStructured(ctx context.Context, request string) error {
	res, err := a.structuredController().Handle(ctx, request)
	if res != nil && res.Decision != nil {
		a.printDecision(res.Decision)
		fmt.Fprintf(a.out, "%s%s%s\n", colorDim, strings.Repeat("-", 70), colorReset)
	}
	if err != nil {
		if res != nil && res.Answer != "" {
			fmt.Fprintf(a.out, "%sRejected reply:%s %s\n", colorRed, colorReset, res.Answer)
		}
		return err
	}
	doc, err := yaml.Marshal(res.Structured)
	if err != nil {
		return fmt.Errorf("render structured answer: %w", err)
	}
	fmt.Fprintf(a.out, "%s%s%s", colorWhite, doc, colorReset)
	return nil
}

func (a *app) runCritique(ctx context.Context, request string) error {
	loop, err := a.critiqueLoop()
	if err != nil {
		return err
	}
	res, err := loop.Run(ctx, request, a.cfg.Critique.MaxAttempts)
	if res != nil {
		for _, at := range res.History {
			color := colorRed
			if at.Judgement.Decision == critique.VerdictPass {
				color = colorGreen
			}
			fmt.Fprintf(a.out, "%sAttempt %d:%s %s%s%s\n",
				colorBold, at.Number, colorReset, color, at.Judgement.Decision, colorReset)
			if at.Judgement.Reasoning != "" {
				fmt.Fprintf(a.out, "  %sReasoning:%s %s\n", colorDim, colorReset, at.Judgement.Reasoning)
			}
			if at.Judgement.HasFeedback {
				fmt.Fprintf(a.out, "  %sFeedback:%s %s\n", colorDim, colorReset, at.Judgement.Feedback)
			}
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s%s%s\n", colorDim, strings.Repeat("-", 70), colorReset)
	fmt.Fprintf(a.out, "%sOutcome:%s %s after %d attempt(s)\n", colorBold, colorReset, res.Outcome, res.Attempts)
	fmt.Fprintf(a.out, "%s%s%s\n", colorWhite, res.Response, colorReset)
	return nil
}
