package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/hooks"
)

// Keyword routes by keyword score.
//
// An agent's score is the number of its distinct keywords that occur as substrings of
// the lower-cased request. The unique agent with the highest non-zero score wins. If
// every score is zero, or several agents share the highest score, the registry default
// is selected even when the tie is at a non-zero score.
type Keyword struct {
	registry *orchestra.Registry
	keywords [][]string
	hooks    *hooks.Registry
}

// NewKeyword creates a keyword router over registry.
func NewKeyword(registry *orchestra.Registry) *Keyword {
	agents := registry.Agents()
	keywords := make([][]string, len(agents))
	for i, a := range agents {
		keywords[i] = normalizeKeywords(a.Keywords)
	}
	return &Keyword{
		registry: registry,
		keywords: keywords,
	}
}

// WithHooks sets the hook registry notified of each decision.
func (k *Keyword) WithHooks(h *hooks.Registry) *Keyword {
	k.hooks = h
	return k
}

// Scores returns every agent's keyword score for request.
func (k *Keyword) Scores(request string) map[string]int {
	lowered := strings.ToLower(request)
	agents := k.registry.Agents()
	scores := make(map[string]int, len(agents))
	for i, a := range agents {
		score := 0
		for _, kw := range k.keywords[i] {
			if strings.Contains(lowered, kw) {
				score++
			}
		}
		scores[a.Name] = score
	}
	return scores
}

// Route implements Router. It fails only when ctx is already done.
func (k *Keyword) Route(ctx context.Context, request string) (*Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := k.Scores(request)
	agents := k.registry.Agents()

	best, runnerUp := -1, -1
	var leaders []string
	for i, a := range agents {
		s := scores[a.Name]
		switch {
		case best < 0 || s > scores[agents[best].Name]:
			runnerUp = best
			best = i
			leaders = []string{a.Name}
		case s == scores[agents[best].Name]:
			leaders = append(leaders, a.Name)
			if runnerUp < 0 || s > scores[agents[runnerUp].Name] {
				runnerUp = i
			}
		case runnerUp < 0 || s > scores[agents[runnerUp].Name]:
			runnerUp = i
		}
	}

	decision := &Decision{
		Scores:   scores,
		Strategy: StrategyKeyword,
	}
	top := scores[agents[best].Name]
	def := k.registry.Default()
	switch {
	case top == 0:
		decision.Selected = def
		decision.Fallback = true
		decision.Reasoning = fmt.Sprintf("No keywords matched; using default agent %s", def.Name)
	case len(leaders) > 1:
		decision.Selected = def
		decision.Fallback = true
		decision.Reasoning = fmt.Sprintf(
			"Tie at score %d between %s; using default agent %s",
			top, strings.Join(leaders, ", "), def.Name,
		)
	default:
		decision.Selected = agents[best]
		if runnerUp < 0 {
			decision.Reasoning = fmt.Sprintf("Selected %s with score %d", agents[best].Name, top)
		} else {
			decision.Reasoning = fmt.Sprintf(
				"Selected %s with score %d; runner-up %s with score %d",
				agents[best].Name, top, agents[runnerUp].Name, scores[agents[runnerUp].Name],
			)
		}
	}

	k.hooks.FireRoute(ctx, routeEvent(request, decision))
	return decision, nil
}

func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

var _ Router = (*Keyword)(nil)
