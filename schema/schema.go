// Package schema compiles JSON Schemas and validates values against them.
//
// Tool parameter schemas and the catalog file format are both described with JSON
// Schema. Tool schemas are usually built with the helpers in this package:
//
//	params := schema.Object(map[string]*schema.Property{
//	    "a": schema.Number("First operand"),
//	    "b": schema.Number("Second operand"),
//	}, "a", "b")
//
// and compiled once when the tool is registered:
//
//	compiled, err := schema.Compile(params)
//	if err := compiled.Validate(call.Arguments); err != nil {
//	    // err is a *schema.ValidationError
//	}
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const resourceName = "schema.json"

// Schema is a compiled JSON Schema together with the raw document it came from.
// A nil *Schema accepts every value.
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the schema document as a map, suitable for sending to a model.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate checks v against the schema.
//
// v may be any value that encodes to JSON: argument maps decoded from a model, Go
// structs, or documents decoded from YAML. It is normalised through JSON first so
// that Go integer and float types validate the same way JSON numbers do.
func (s *Schema) Validate(v any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	doc, err := normalize(v)
	if err != nil {
		return &ValidationError{Err: err}
	}
	if err := s.compiled.Validate(doc); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// DecodeJSON parses a model reply as JSON and validates it. Surrounding whitespace and a
// markdown code fence around the document are ignored. A reply that is not JSON is
// reported as a *ValidationError too.
func (s *Schema) DecodeJSON(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(TrimFence(text)), &v); err != nil {
		return nil, &ValidationError{Err: fmt.Errorf("reply is not JSON: %w", err)}
	}
	if err := s.Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

// TrimFence strips surrounding whitespace and a markdown code fence such as
// "```json ... ```" from text.
func TrimFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}
	text = strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{[\"") {
		text = text[nl+1:]
	}
	return strings.TrimSpace(text)
}

// ValidationError reports a value that does not satisfy a schema.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a schema given as a map. A nil map compiles to a nil *Schema,
// which accepts everything.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	compiled, err := compile(data)
	if err != nil {
		return nil, err
	}
	return &Schema{raw: raw, compiled: compiled}, nil
}

// CompileJSON compiles a schema given as a JSON document, such as an embedded file.
func CompileJSON(data []byte) (*Schema, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	compiled, err := compile(data)
	if err != nil {
		return nil, err
	}
	return &Schema{raw: raw, compiled: compiled}, nil
}

// MustCompile is like Compile but panics on error.
// Use this for schemas defined at init time.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

func compile(data []byte) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(resourceName, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := c.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return compiled, nil
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON encodable: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

// -----------------------------------------------------------------------------
// Builders
// -----------------------------------------------------------------------------

// Object creates an object schema. Names passed after properties are required.
func Object(properties map[string]*Property, required ...string) map[string]any {
	props := make(map[string]any, len(properties))
	for name, prop := range properties {
		props[name] = prop.build()
	}

	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// Property is one entry of an object schema. Build it with String, Number, Integer,
// Boolean or Array and refine it with the chained setters.
type Property struct {
	typ         string
	description string
	enum        []any
	minimum     *float64
	maximum     *float64
	minLength   *int
	maxLength   *int
	pattern     string
	items       map[string]any
	def         any
}

func (p *Property) build() map[string]any {
	m := map[string]any{"type": p.typ}
	if p.description != "" {
		m["description"] = p.description
	}
	if len(p.enum) > 0 {
		m["enum"] = p.enum
	}
	if p.minimum != nil {
		m["minimum"] = *p.minimum
	}
	if p.maximum != nil {
		m["maximum"] = *p.maximum
	}
	if p.minLength != nil {
		m["minLength"] = *p.minLength
	}
	if p.maxLength != nil {
		m["maxLength"] = *p.maxLength
	}
	if p.pattern != "" {
		m["pattern"] = p.pattern
	}
	if p.items != nil {
		m["items"] = p.items
	}
	if p.def != nil {
		m["default"] = p.def
	}
	return m
}

// String creates a string property.
func String(description string) *Property {
	return &Property{typ: "string", description: description}
}

// Number creates a floating point property.
func Number(description string) *Property {
	return &Property{typ: "number", description: description}
}

// Integer creates an integer property.
func Integer(description string) *Property {
	return &Property{typ: "integer", description: description}
}

// Boolean creates a boolean property.
func Boolean(description string) *Property {
	return &Property{typ: "boolean", description: description}
}

// Map creates a free-form object property.
func Map(description string) *Property {
	return &Property{typ: "object", description: description}
}

// Array creates an array property whose elements match items.
//
//	schema.Array("Keywords", map[string]any{"type": "string"})
func Array(description string, items map[string]any) *Property {
	return &Property{typ: "array", description: description, items: items}
}

// Enum restricts the property to the given values.
func (p *Property) Enum(values ...any) *Property {
	p.enum = values
	return p
}

// Min sets the inclusive lower bound of a number or integer.
func (p *Property) Min(min float64) *Property {
	p.minimum = &min
	return p
}

// Max sets the inclusive upper bound of a number or integer.
func (p *Property) Max(max float64) *Property {
	p.maximum = &max
	return p
}

// MinLength sets the minimum length of a string.
func (p *Property) MinLength(n int) *Property {
	p.minLength = &n
	return p
}

// MaxLength sets the maximum length of a string.
func (p *Property) MaxLength(n int) *Property {
	p.maxLength = &n
	return p
}

// Pattern sets the regular expression a string must match.
func (p *Property) Pattern(pattern string) *Property {
	p.pattern = pattern
	return p
}

// Default records the value assumed when the property is omitted. It is informational
// only; validation does not fill it in.
func (p *Property) Default(value any) *Property {
	p.def = value
	return p
}
