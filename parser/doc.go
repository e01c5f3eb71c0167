// Package parser extracts labelled fields from free-form model output.
//
// Models are asked to answer with lines such as:
//
//	SELECTED_AGENT: dr_code
//	REASONING: The question is about Python.
//
// [Parse] reads those lines back into a [Result]. Parsing never fails: a field the model
// did not emit is simply absent and the caller picks its own default. [MatchEnum] is a
// looser secondary heuristic for when the labelled line is missing altogether.
//
// # Example
//
//	fields := []parser.Field{
//	    {Name: "decision", Prefix: "DECISION"},
//	    {Name: "feedback", Prefix: "FEEDBACK"},
//	}
//	res := parser.Parse(judgeOutput, fields)
//	decision, ok := res.Get("decision")
//	if !ok {
//	    decision = "FAIL"
//	}
//
// Use [Describe] to render the matching instruction block for a prompt.
package parser
