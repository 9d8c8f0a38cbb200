// Package schema provides JSON Schema building and validation utilities.
//
// Task outputs are checked against schemas before clean-up runs, so a model
// answer that has the wrong shape counts as a failed attempt rather than a
// clean-up panic.
//
// # Quick Start
//
//	subtasks := schema.MustCompile(schema.Array("Subtasks",
//	    schema.Tuple("Subtask and its duration",
//	        schema.String("Subtask").MinLength(1),
//	        schema.Integer("Minutes").Min(0),
//	    ),
//	).MinItems(1).Schema())
//
//	value, err := subtasks.ValidateJSON(raw)
//
// See [Property], [For] and [Envelope] for detailed documentation.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema represents a JSON Schema definition.
// It provides both the raw map representation (for serialization/prompts)
// and a compiled validator (for runtime validation).
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the underlying map[string]any representation.
// This is useful for serialization and passing to LLMs.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate validates the given data against the schema.
// Returns nil if valid, or an error describing the validation failure.
//
// Data should come from [Decode] (or be built from Go maps, slices and
// scalars); numbers may be json.Number or any Go numeric type.
func (s *Schema) Validate(data any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	err := s.compiled.Validate(data)
	if err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidationError wraps a JSON Schema validation error with a cleaner message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateJSON decodes data with [Decode] and validates the result.
// The decoded value is returned even when validation fails.
func (s *Schema) ValidateJSON(data []byte) (any, error) {
	value, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return value, s.Validate(value)
}

// Decode parses a single JSON value. Numbers are kept as json.Number and
// trailing data after the value is an error.
func Decode(data []byte) (any, error) {
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return value, nil
}

// Compile compiles a schema map. A nil map yields a nil *Schema, which
// accepts every value.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
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

// -----------------------------------------------------------------------------
// Schema Builders
// -----------------------------------------------------------------------------

// Property is a schema under construction. Model answers are strings,
// integers and (nested) lists, so those are the only kinds it builds.
type Property struct {
	typ         string
	description string
	minimum     *float64
	maximum     *float64
	minLength   *int
	minItems    *int
	items       *Property
	tuple       []*Property
}

// String creates a string property.
func String(description string) *Property {
	return &Property{typ: "string", description: description}
}

// Integer creates an integer property.
//
//	schema.Integer("Poignancy").Min(1).Max(10)
func Integer(description string) *Property {
	return &Property{typ: "integer", description: description}
}

// Array creates a list whose elements all match items.
func Array(description string, items *Property) *Property {
	return &Property{typ: "array", description: description, items: items}
}

// Tuple creates a fixed-length list whose i-th element matches items[i],
// such as the ["Isabella Rodriguez", "Hi!"] pairs of a conversation.
func Tuple(description string, items ...*Property) *Property {
	return &Property{typ: "array", description: description, tuple: items}
}

// Min sets the minimum of an integer.
func (p *Property) Min(min float64) *Property {
	p.minimum = &min
	return p
}

// Max sets the maximum of an integer.
func (p *Property) Max(max float64) *Property {
	p.maximum = &max
	return p
}

// MinLength sets the minimum length of a string.
func (p *Property) MinLength(n int) *Property {
	p.minLength = &n
	return p
}

// MinItems sets the minimum length of a list.
func (p *Property) MinItems(n int) *Property {
	p.minItems = &n
	return p
}

// Schema returns the property as a schema map, ready for [Compile] or
// [Envelope].
func (p *Property) Schema() map[string]any {
	m := map[string]any{"type": p.typ}
	if p.description != "" {
		m["description"] = p.description
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
	if p.minItems != nil {
		m["minItems"] = *p.minItems
	}
	if p.items != nil {
		m["items"] = p.items.Schema()
	}
	if len(p.tuple) > 0 {
		prefix := make([]any, len(p.tuple))
		for i, item := range p.tuple {
			prefix[i] = item.Schema()
		}
		m["prefixItems"] = prefix
		m["minItems"] = len(p.tuple)
		m["maxItems"] = len(p.tuple)
	}
	return m
}
