// Package critique runs a solver model and a judge model in a bounded refinement loop.
//
// # Overview
//
// Each attempt is one Solving step followed by one Judging step:
//
//	Solving: the solver answers the request. From the second attempt on it also sees
//	         its previous answer and the judge's feedback.
//	Judging: the judge answers in three labelled lines,
//	             DECISION: PASS or FAIL
//	             REASONING: ...
//	             FEEDBACK: ... or "None needed."
//
// A PASS ends the run as OutcomeApproved. A FAIL on the last attempt ends it as
// OutcomeExhausted with the last answer, which is a best-effort result and not an
// error. Any other FAIL starts the next attempt with the feedback carried forward.
//
// # Parsing the Judge
//
// The verdict is read with the parser package. A judge reply without a DECISION line
// is a FAIL whose feedback is the whole reply, so unreadable output never passes.
// FEEDBACK "None needed." (any case, period optional) means no feedback.
//
// # Example
//
//	loop := critique.New(solver, judge)
//	result, err := loop.Run(ctx, "Explain how to store passwords securely", 3)
//	if err != nil {
//	    return err // a model call failed
//	}
//	fmt.Println(result.Outcome, result.Attempts)
//	fmt.Println(result.Response)
package critique
