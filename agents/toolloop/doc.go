// Package toolloop runs a model in a bounded reason/act loop over a set of tools.
//
// # Overview
//
// The loop alternates two states until the model stops asking for tools:
//
//	Reasoning: call the agent's model with the system prompt and the transcript,
//	           append its reply. Tool calls lead to Acting, otherwise the run ends.
//	Acting:    run every requested tool call in order and append one tool message
//	           per call, carrying the call's ID. Then go back to Reasoning.
//
// # Failures
//
// Tool failures never stop the loop. Unknown tools, invalid arguments and tool errors
// become the content of the tool message ("Error: ...") so the model can react on its
// next reasoning step.
//
// The number of reasoning steps is bounded by MaxIterations (default 10). When the
// reasoning step at the ceiling still asks for tools, Run returns an
// *orchestra.IterationLimitError carrying the transcript; the tool calls of that last
// step are not executed.
//
// A failed model call ends the run with an error. The partial transcript is still
// available on the returned Result.
//
// # Example
//
//	chain := toolchain.New().
//	    MustRegister(calculator.Add()).
//	    MustRegister(calculator.Multiply())
//
//	loop := toolloop.New(models, chain).WithMaxIterations(5)
//	result, err := loop.Run(ctx, "Add 3 and 4, then multiply by 4", agent)
//	if errors.Is(err, orchestra.ErrIterationLimitExceeded) {
//	    // result.Transcript holds everything up to the ceiling
//	}
//	fmt.Println(result.FinalAnswer)
package toolloop
