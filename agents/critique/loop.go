package critique

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/hooks"
)

// DefaultMaxAttempts is the attempt budget used by callers that have no policy of their own.
const DefaultMaxAttempts = 3

// ErrInvalidMaxAttempts is returned by Run when maxAttempts is below one.
var ErrInvalidMaxAttempts = errors.New("critique: max attempts must be at least 1")

// DefaultSolverPersona is the solver's system prompt when none is configured.
const DefaultSolverPersona = `You are an Expert Problem Solver tasked with providing comprehensive, accurate solutions.

Your approach:
- Analyze problems thoroughly
- Provide clear, step-by-step solutions
- Include examples when helpful
- Be precise and detailed
- If you receive feedback, carefully incorporate it to improve your response`

// DefaultJudgePersona is the judge's system prompt when none is configured.
const DefaultJudgePersona = `You are a Critical Judge who evaluates responses for quality and completeness.

Your evaluation criteria:
- Accuracy: Is the information correct?
- Completeness: Does it fully address the question?
- Clarity: Is it well-explained and easy to understand?
- Usefulness: Would this help someone solve the problem?

You must:
1. Make a PASS/FAIL decision
2. Provide specific, actionable feedback if FAIL
3. Be constructive but thorough in your critique`

// Outcome is how a run ended.
type Outcome int

const (
	// OutcomeApproved means the judge passed the response.
	OutcomeApproved Outcome = iota + 1
	// OutcomeExhausted means every attempt failed; Response is the last attempt.
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApproved:
		return "approved"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// State is the loop state between steps. Attempt never exceeds MaxAttempts.
type State struct {
	Attempt      int
	MaxAttempts  int
	LastResponse string
	Feedback     string
	HasFeedback  bool
	Verdict      Verdict
}

// Attempt records one solve/judge pair.
type Attempt struct {
	Number    int
	Prompt    string
	Response  string
	Judgement Judgement
}

// Result is the outcome of a run.
type Result struct {
	// Response is the approved response, or the last one when exhausted.
	Response string
	Outcome  Outcome

	// Attempts is the number of solve/judge pairs performed.
	Attempts int
	History  []Attempt
}

// Loop alternates a solver and a judge. A Loop holds configuration only and may
// serve concurrent runs.
type Loop struct {
	solver        orchestra.Model
	judge         orchestra.Model
	solverRef     string
	judgeRef      string
	solverPersona string
	judgePersona  string
	hooks         *hooks.Registry
	callTimeout   time.Duration
}

// New creates a loop. solver and judge may be the same model.
func New(solver, judge orchestra.Model) *Loop {
	return &Loop{
		solver:        solver,
		judge:         judge,
		solverRef:     "solver",
		judgeRef:      "judge",
		solverPersona: DefaultSolverPersona,
		judgePersona:  DefaultJudgePersona,
	}
}

// WithSolverPersona sets the solver's system prompt.
func (l *Loop) WithSolverPersona(persona string) *Loop {
	l.solverPersona = persona
	return l
}

// WithJudgePersona sets the judge's system prompt.
func (l *Loop) WithJudgePersona(persona string) *Loop {
	l.judgePersona = persona
	return l
}

// WithModelRefs sets the model names reported to hooks.
func (l *Loop) WithModelRefs(solver, judge string) *Loop {
	l.solverRef = solver
	l.judgeRef = judge
	return l
}

// WithHooks sets the hook registry.
func (l *Loop) WithHooks(h *hooks.Registry) *Loop {
	l.hooks = h
	return l
}

// WithCallTimeout bounds every model call. Zero means no bound beyond ctx.
func (l *Loop) WithCallTimeout(d time.Duration) *Loop {
	l.callTimeout = d
	return l
}

type step int

const (
	stepSolving step = iota
	stepJudging
	stepDone
)

// Run refines an answer to request for at most maxAttempts solve/judge pairs.
//
// A failed solver or judge call ends the run with that error; the returned Result then
// holds the attempts completed so far.
func (l *Loop) Run(ctx context.Context, request string, maxAttempts int) (*Result, error) {
	if maxAttempts < 1 {
		return nil, ErrInvalidMaxAttempts
	}

	state := State{Attempt: 1, MaxAttempts: maxAttempts}
	result := &Result{}
	var current Attempt

	for s := stepSolving; s != stepDone; {
		switch s {
		case stepSolving:
			prompt := SolverPrompt(request, state)
			reply, err := l.call(ctx, "critique:solver", l.solver, l.solverRef, l.solverPersona, prompt)
			if err != nil {
				return result, fmt.Errorf("critique: solver attempt %d: %w", state.Attempt, err)
			}
			state.LastResponse = reply
			state.Verdict = VerdictNone
			current = Attempt{Number: state.Attempt, Prompt: prompt, Response: reply}
			s = stepJudging

		case stepJudging:
			reply, err := l.call(ctx, "critique:judge", l.judge, l.judgeRef, l.judgePersona,
				JudgePrompt(request, state.LastResponse))
			if err != nil {
				return result, fmt.Errorf("critique: judge attempt %d: %w", state.Attempt, err)
			}
			j := ParseJudgement(reply)
			current.Judgement = j
			result.History = append(result.History, current)
			result.Attempts = state.Attempt
			result.Response = state.LastResponse

			l.hooks.FireJudge(ctx, orchestra.JudgeEvent{
				Attempt:   state.Attempt,
				Decision:  j.Decision.String(),
				Reasoning: j.Reasoning,
				Feedback:  j.Feedback,
				Fallback:  j.Fallback,
			})

			state.Verdict = j.Decision
			state.Feedback, state.HasFeedback = j.Feedback, j.HasFeedback
			switch {
			case j.Decision == VerdictPass:
				result.Outcome = OutcomeApproved
				s = stepDone
			case state.Attempt == state.MaxAttempts:
				result.Outcome = OutcomeExhausted
				s = stepDone
			default:
				state.Attempt++
				s = stepSolving
			}
		}
	}
	return result, nil
}

func (l *Loop) call(
	ctx context.Context,
	component string,
	model orchestra.Model,
	ref string,
	persona string,
	prompt string,
) (string, error) {
	if l.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.callTimeout)
		defer cancel()
	}

	messages := []orchestra.Message{
		orchestra.SystemMessage(persona),
		orchestra.UserMessage(prompt),
	}
	l.hooks.FireBeforeModelCall(ctx, orchestra.BeforeModelCallEvent{
		Component: component,
		ModelRef:  ref,
		Messages:  messages,
	})
	start := time.Now()
	reply, err := model.Invoke(ctx, messages)
	l.hooks.FireAfterModelCall(ctx, orchestra.AfterModelCallEvent{
		Component: component,
		ModelRef:  ref,
		Messages:  messages,
		Response:  reply,
		Duration:  time.Since(start),
		Error:     err,
	})
	if err != nil {
		return "", err
	}
	if reply == nil {
		return "", nil
	}
	return reply.Content, nil
}
