package critique

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rickchristie/orchestra"
	"github.com/rickchristie/orchestra/hooks"
	"github.com/rickchristie/orchestra/internal/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const failVerdict = "DECISION: FAIL\nREASONING: Too vague.\nFEEDBACK: Add concrete steps."
const passVerdict = "DECISION: PASS\nREASONING: Complete.\nFEEDBACK: None needed."

func numberedSolver() *tt.MockModel {
	return tt.NewMockModel().WithFallback(func(call int, _ []orchestra.Message) (*orchestra.Message, error) {
		msg := orchestra.AssistantMessage(fmt.Sprintf("answer %d", call+1))
		return &msg, nil
	})
}

func judgeSequence(verdicts ...string) *tt.MockModel {
	m := tt.NewMockModel()
	for _, v := range verdicts {
		m.AddResponse(v)
	}
	return m
}

func TestLoop_Run(t *testing.T) {
	type input struct {
		maxAttempts int
		verdicts    []string
	}

	type expected struct {
		outcome  Outcome
		attempts int
		response string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "single attempt pass",
			input:    input{maxAttempts: 1, verdicts: []string{passVerdict}},
			expected: expected{outcome: OutcomeApproved, attempts: 1, response: "answer 1"},
		},
		{
			name:     "single attempt fail is exhausted",
			input:    input{maxAttempts: 1, verdicts: []string{failVerdict}},
			expected: expected{outcome: OutcomeExhausted, attempts: 1, response: "answer 1"},
		},
		{
			name:     "always fail runs every attempt",
			input:    input{maxAttempts: 3, verdicts: []string{failVerdict, failVerdict, failVerdict}},
			expected: expected{outcome: OutcomeExhausted, attempts: 3, response: "answer 3"},
		},
		{
			name:     "pass on second attempt",
			input:    input{maxAttempts: 3, verdicts: []string{failVerdict, passVerdict}},
			expected: expected{outcome: OutcomeApproved, attempts: 2, response: "answer 2"},
		},
		{
			name:     "pass on last attempt",
			input:    input{maxAttempts: 4, verdicts: []string{failVerdict, failVerdict, failVerdict, passVerdict}},
			expected: expected{outcome: OutcomeApproved, attempts: 4, response: "answer 4"},
		},
		{
			name:     "unparseable judge never passes",
			input:    input{maxAttempts: 2, verdicts: []string{"Looks great, PASS!", "PASS"}},
			expected: expected{outcome: OutcomeExhausted, attempts: 2, response: "answer 2"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			solver := numberedSolver()
			judge := judgeSequence(tc.input.verdicts...)
			loop := New(solver, judge)

			res, err := loop.Run(context.Background(), "Explain authentication", tc.input.maxAttempts)

			require.NoError(t, err)
			assert.Equal(t, tc.expected.outcome, res.Outcome)
			assert.Equal(t, tc.expected.attempts, res.Attempts)
			assert.Equal(t, tc.expected.response, res.Response)
			assert.Len(t, res.History, tc.expected.attempts)
			assert.Equal(t, tc.expected.attempts, solver.CallCount(), "one solve per attempt")
			assert.Equal(t, tc.expected.attempts, judge.CallCount(), "one judge per attempt")
			assert.LessOrEqual(t, res.Attempts, tc.input.maxAttempts)
		})
	}
}

func TestLoop_AlwaysFailPairsEqualBudget(t *testing.T) {
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			solver := numberedSolver()
			judge := tt.NewMockModel().WithFallback(func(int, []orchestra.Message) (*orchestra.Message, error) {
				msg := orchestra.AssistantMessage(failVerdict)
				return &msg, nil
			})

			res, err := New(solver, judge).Run(context.Background(), "q", n)

			require.NoError(t, err)
			assert.Equal(t, OutcomeExhausted, res.Outcome)
			assert.Equal(t, n, solver.CallCount())
			assert.Equal(t, n, judge.CallCount())
		})
	}
}

func TestLoop_FeedbackIsCarriedForward(t *testing.T) {
	solver := numberedSolver()
	judge := judgeSequence(failVerdict, "DECISION: FAIL\nFEEDBACK: None needed.", passVerdict)
	loop := New(solver, judge).WithSolverPersona("solver persona").WithJudgePersona("judge persona")

	res, err := loop.Run(context.Background(), "Explain authentication", 3)
	require.NoError(t, err)
	require.Equal(t, 3, res.Attempts)

	first := solver.CapturedMessages[0]
	assert.Equal(t, []orchestra.Message{
		orchestra.SystemMessage("solver persona"),
		orchestra.UserMessage("Explain authentication"),
	}, first)

	second := solver.CapturedMessages[1][1].Content
	assert.Contains(t, second, "Original Query: Explain authentication")
	assert.Contains(t, second, "YOUR PREVIOUS RESPONSE:\nanswer 1")
	assert.Contains(t, second, "PREVIOUS FEEDBACK FROM JUDGE:\nAdd concrete steps.")
	assert.Equal(t, second, res.History[1].Prompt)

	// The second judgement had no usable feedback, so the request is sent verbatim.
	assert.Equal(t, "Explain authentication", solver.CapturedMessages[2][1].Content)

	judged := judge.CapturedMessages[1]
	assert.Equal(t, orchestra.SystemMessage("judge persona"), judged[0])
	assert.Contains(t, judged[1].Content, "Original Query: Explain authentication")
	assert.Contains(t, judged[1].Content, "Response to Evaluate:\nanswer 2")
}

func TestLoop_History(t *testing.T) {
	solver := numberedSolver()
	judge := judgeSequence(failVerdict, passVerdict)

	res, err := New(solver, judge).Run(context.Background(), "q", 3)
	require.NoError(t, err)

	require.Len(t, res.History, 2)
	assert.Equal(t, 1, res.History[0].Number)
	assert.Equal(t, "q", res.History[0].Prompt)
	assert.Equal(t, "answer 1", res.History[0].Response)
	assert.Equal(t, VerdictFail, res.History[0].Judgement.Decision)
	assert.Equal(t, "Add concrete steps.", res.History[0].Judgement.Feedback)
	assert.Equal(t, 2, res.History[1].Number)
	assert.Equal(t, VerdictPass, res.History[1].Judgement.Decision)
	assert.False(t, res.History[1].Judgement.HasFeedback)
}

func TestLoop_InvalidMaxAttempts(t *testing.T) {
	for _, n := range []int{0, -1} {
		res, err := New(tt.NewMockModel(), tt.NewMockModel()).Run(context.Background(), "q", n)

		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	}
}

func TestLoop_ModelFailures(t *testing.T) {
	unreachable := errors.New("connection refused")

	t.Run("solver failure", func(t *testing.T) {
		solver := tt.NewMockModel().AddResponse("answer 1").AddError(unreachable)
		judge := judgeSequence(failVerdict)

		res, err := New(solver, judge).Run(context.Background(), "q", 3)

		assert.ErrorIs(t, err, unreachable)
		assert.Contains(t, err.Error(), "solver attempt 2")
		require.NotNil(t, res)
		assert.Equal(t, 1, res.Attempts)
		assert.Equal(t, "answer 1", res.Response)
	})

	t.Run("judge failure", func(t *testing.T) {
		solver := numberedSolver()
		judge := tt.NewMockModel().AddError(unreachable)

		res, err := New(solver, judge).Run(context.Background(), "q", 3)

		assert.ErrorIs(t, err, unreachable)
		assert.Contains(t, err.Error(), "judge attempt 1")
		require.NotNil(t, res)
		assert.Equal(t, 0, res.Attempts)
		assert.Empty(t, res.History)
	})
}

func TestLoop_CallTimeout(t *testing.T) {
	slow := orchestra.ModelFunc(func(ctx context.Context, _ []orchestra.Message, _ ...orchestra.InvokeOption) (*orchestra.Message, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := New(slow, slow).WithCallTimeout(10*time.Millisecond).Run(context.Background(), "q", 1)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoop_Hooks(t *testing.T) {
	rec := tt.NewRecordingHook()
	loop := New(numberedSolver(), judgeSequence(failVerdict, "garbage")).
		WithModelRefs("gpt-oss:20b", "mistral").
		WithHooks(hooks.NewRegistry().Register(rec))

	_, err := loop.Run(context.Background(), "q", 2)
	require.NoError(t, err)

	require.Len(t, rec.Judgements, 2)
	assert.Equal(t, orchestra.JudgeEvent{
		Attempt:   1,
		Decision:  "FAIL",
		Reasoning: "Too vague.",
		Feedback:  "Add concrete steps.",
	}, rec.Judgements[0])
	assert.True(t, rec.Judgements[1].Fallback)
	assert.Equal(t, "garbage", rec.Judgements[1].Feedback)

	require.Len(t, rec.BeforeModelCalls, 4)
	assert.Equal(t, "critique:solver", rec.BeforeModelCalls[0].Component)
	assert.Equal(t, "gpt-oss:20b", rec.BeforeModelCalls[0].ModelRef)
	assert.Equal(t, "critique:judge", rec.BeforeModelCalls[1].Component)
	assert.Equal(t, "mistral", rec.BeforeModelCalls[1].ModelRef)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "approved", OutcomeApproved.String())
	assert.Equal(t, "exhausted", OutcomeExhausted.String())
	assert.Equal(t, "unknown", Outcome(0).String())
}
