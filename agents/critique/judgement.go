package critique

import (
	"fmt"
	"strings"

	"github.com/rickchristie/orchestra/parser"
)

// Verdict is the judge's decision.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictPass
	VerdictFail
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "PASS"
	case VerdictFail:
		return "FAIL"
	default:
		return "NONE"
	}
}

const (
	fieldDecision  = "decision"
	fieldReasoning = "reasoning"
	fieldFeedback  = "feedback"
)

var judgeFields = []parser.Field{
	{Name: fieldDecision, Prefix: "DECISION", Guidance: "[PASS or FAIL]"},
	{Name: fieldReasoning, Prefix: "REASONING", Guidance: "[Explain your decision]"},
	{Name: fieldFeedback, Prefix: "FEEDBACK", Guidance: `[If FAIL, provide specific actionable feedback for improvement. If PASS, write "None needed."]`},
}

// Judgement is one parsed judge reply.
type Judgement struct {
	Decision  Verdict
	Reasoning string

	// Feedback is meaningful only when HasFeedback is true.
	Feedback    string
	HasFeedback bool

	// Raw is the judge's unparsed reply.
	Raw string

	// Fallback reports that no DECISION line was found and the FAIL default applied.
	Fallback bool
}

// ParseJudgement reads a judge reply. It never fails.
//
// The DECISION value is upper-cased and compared with PASS after stripping brackets,
// markdown emphasis and a trailing period, so "[PASS]" and "pass." both pass. Anything
// else is a FAIL. Without a DECISION line the reply is a FAIL with the whole reply as
// feedback.
func ParseJudgement(text string) Judgement {
	j := Judgement{Raw: text}
	res := parser.Parse(text, judgeFields)

	decision, ok := res.Get(fieldDecision)
	if res.Recovered() || !ok {
		j.Decision = VerdictFail
		j.Fallback = true
		j.Feedback = text
		j.HasFeedback = strings.TrimSpace(text) != ""
		return j
	}

	if normalizeDecision(decision) == "PASS" {
		j.Decision = VerdictPass
	} else {
		j.Decision = VerdictFail
	}
	j.Reasoning, _ = res.Get(fieldReasoning)

	if feedback, ok := res.Get(fieldFeedback); ok && feedback != "" && !isNoneNeeded(feedback) {
		j.Feedback = feedback
		j.HasFeedback = true
	}
	return j
}

func normalizeDecision(s string) string {
	const decoration = "[]*\"'`"
	s = strings.TrimRight(strings.TrimSpace(s), ".")
	s = strings.Trim(s, decoration)
	s = strings.TrimRight(strings.TrimSpace(s), ".")
	return strings.ToUpper(strings.TrimSpace(s))
}

func isNoneNeeded(s string) bool {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), "\"'"))
	return s == "none needed." || s == "none needed"
}

// JudgePrompt returns the judge's user prompt for one candidate response.
func JudgePrompt(request, response string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Original Query: %s\n\n", request)
	fmt.Fprintf(&sb, "Response to Evaluate:\n%s\n\n", response)
	sb.WriteString("Evaluate this response based on accuracy, completeness, clarity, and usefulness.\n\n")
	sb.WriteString("You must respond in this exact format:\n")
	sb.WriteString(parser.Describe(judgeFields))
	return sb.String()
}

// SolverPrompt returns the solver's user prompt for the current state. Without
// feedback it is the request itself.
func SolverPrompt(request string, state State) string {
	if !state.HasFeedback {
		return request
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Original Query: %s\n\n", request)
	fmt.Fprintf(&sb, "YOUR PREVIOUS RESPONSE:\n%s\n\n", state.LastResponse)
	fmt.Fprintf(&sb, "PREVIOUS FEEDBACK FROM JUDGE:\n%s\n\n", state.Feedback)
	sb.WriteString("Please provide an improved response that addresses the feedback above.")
	return sb.String()
}
