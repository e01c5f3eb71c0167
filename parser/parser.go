package parser

import (
	"fmt"
	"strings"
)

// Field names a value to extract and the line prefix that carries it.
//
// Prefix is matched case-sensitively and must be followed by a colon, so Prefix
// "DECISION" matches the line "DECISION: PASS" but not "Decision: PASS".
type Field struct {
	Name   string
	Prefix string

	// Guidance is shown after the prefix by Describe. It does not affect parsing.
	Guidance string
}

// Result holds the fields recognised in one model output.
type Result struct {
	values    map[string]string
	recovered bool
}

// Get returns the value of the named field and whether the field was present.
func (r Result) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// GetOr returns the value of the named field, or def when the field was absent.
func (r Result) GetOr(name, def string) string {
	if v, ok := r.values[name]; ok {
		return v
	}
	return def
}

// Len returns the number of recognised fields.
func (r Result) Len() int {
	return len(r.values)
}

// Recovered reports whether parsing hit an internal failure. The Result is then empty.
func (r Result) Recovered() bool {
	return r.recovered
}

// Parse scans text line by line. A trimmed line that starts with a field's Prefix
// followed by ":" assigns the trimmed remainder to that field. When a prefix appears on
// several lines the last one wins. Lines that match no field are ignored.
//
// Parse never panics. Any internal failure yields an empty Result with Recovered set.
func Parse(text string, fields []Field) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{values: map[string]string{}, recovered: true}
		}
	}()

	values := make(map[string]string, len(fields))
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, f := range fields {
			if f.Prefix == "" {
				continue
			}
			label := f.Prefix + ":"
			if strings.HasPrefix(line, label) {
				values[f.Name] = strings.TrimSpace(line[len(label):])
				break
			}
		}
	}
	return Result{values: values}
}

// MatchEnum reports the first of values that occurs in the upper-cased text.
// Values are checked in the order given, so list longer values before their prefixes.
// Returns "" and false when none occurs.
func MatchEnum(text string, values ...string) (string, bool) {
	upper := strings.ToUpper(text)
	for _, v := range values {
		if v == "" {
			continue
		}
		if strings.Contains(upper, strings.ToUpper(v)) {
			return v, true
		}
	}
	return "", false
}

// Describe renders the output-format instruction for fields, one "PREFIX: guidance" line
// per field in order.
func Describe(fields []Field) string {
	var sb strings.Builder
	for _, f := range fields {
		guidance := f.Guidance
		if guidance == "" {
			guidance = "[" + strings.ToLower(f.Name) + "]"
		}
		fmt.Fprintf(&sb, "%s: %s\n", f.Prefix, guidance)
	}
	return strings.TrimRight(sb.String(), "\n")
}
