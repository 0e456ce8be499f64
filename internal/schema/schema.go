// Package schema declares tool input/output shapes and validates payloads
// against them using JSON Schema.
package schema

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// validTypes is the whitelist of field types a shape may declare.
var validTypes = map[string]bool{
	"string": true, "number": true, "boolean": true,
	"integer": true, "array": true, "object": true,
}

// Field describes one named field of a shape: its type, whether it is
// required, an optional default, and optional constraints.
type Field struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Default     any

	// Constraints (nil/empty means unconstrained)
	Minimum   *float64
	Maximum   *float64
	MinLength *int
	MaxLength *int
	Pattern   string
	Enum      []any

	// Items is the element type for array fields (default "string").
	Items string
}

// Shape is a declarative description of a structured payload.
type Shape struct {
	Fields []Field
}

// JSONSchema renders the shape as a JSON Schema document (map form).
// strict shapes reject fields that are not declared.
func (s Shape) JSONSchema(strict bool) map[string]any {
	properties := make(map[string]any, len(s.Fields))
	required := []string{}

	for _, f := range s.Fields {
		fieldSchema := map[string]any{
			"type": f.Type,
		}
		if f.Description != "" {
			fieldSchema["description"] = f.Description
		}
		if f.Default != nil {
			fieldSchema["default"] = f.Default
		}
		if f.Minimum != nil {
			fieldSchema["minimum"] = *f.Minimum
		}
		if f.Maximum != nil {
			fieldSchema["maximum"] = *f.Maximum
		}
		if f.MinLength != nil {
			fieldSchema["minLength"] = *f.MinLength
		}
		if f.MaxLength != nil {
			fieldSchema["maxLength"] = *f.MaxLength
		}
		if f.Pattern != "" {
			fieldSchema["pattern"] = f.Pattern
		}
		if len(f.Enum) > 0 {
			fieldSchema["enum"] = f.Enum
		}
		if f.Type == "array" {
			items := f.Items
			if items == "" {
				items = "string"
			}
			fieldSchema["items"] = map[string]any{"type": items}
		}
		properties[f.Name] = fieldSchema

		if f.Required {
			required = append(required, f.Name)
		}
	}

	schemaMap := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if strict {
		schemaMap["additionalProperties"] = false
	}
	if len(required) > 0 {
		schemaMap["required"] = required
	}
	return schemaMap
}

// validate checks the shape's declarations before compilation.
func (s Shape) validate() error {
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("field name cannot be empty")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if !validTypes[f.Type] {
			return fmt.Errorf("invalid type %q for field %q", f.Type, f.Name)
		}
		if f.Required && f.Default != nil {
			return fmt.Errorf("field %q cannot be both required and defaulted", f.Name)
		}
	}
	return nil
}

// compile builds the gojsonschema representation of the shape.
func (s Shape) compile(strict bool) (*gojsonschema.Schema, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	loader := gojsonschema.NewGoLoader(s.JSONSchema(strict))
	compiled, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return compiled, nil
}

// InputSchema validates inbound tool arguments. Undeclared fields are
// rejected so callers get a diagnostic instead of silent argument loss.
type InputSchema struct {
	shape    Shape
	compiled *gojsonschema.Schema
}

// CompileInput compiles the shape for argument validation.
func (s Shape) CompileInput() (*InputSchema, error) {
	compiled, err := s.compile(true)
	if err != nil {
		return nil, err
	}
	return &InputSchema{shape: s, compiled: compiled}, nil
}

// Shape returns the declared shape.
func (in *InputSchema) Shape() Shape { return in.shape }

// Validate applies declared defaults to absent optional fields, then
// structurally validates the arguments. Returns the defaulted arguments on
// success, or an *ArgumentsError carrying field-level diagnostics.
func (in *InputSchema) Validate(raw map[string]any) (map[string]any, error) {
	args := make(map[string]any, len(raw)+len(in.shape.Fields))
	for k, v := range raw {
		args[k] = v
	}
	for _, f := range in.shape.Fields {
		if f.Default == nil {
			continue
		}
		if _, present := args[f.Name]; !present {
			args[f.Name] = f.Default
		}
	}

	result, err := in.compiled.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return nil, &ArgumentsError{Issues: []Issue{{Field: "(root)", Constraint: err.Error()}}}
	}
	if !result.Valid() {
		return nil, &ArgumentsError{Issues: collectIssues(result)}
	}
	return args, nil
}

// OutputSchema validates a handler's result. Extra fields are tolerated so
// handlers can attach metadata beyond the declared contract.
type OutputSchema struct {
	shape    Shape
	compiled *gojsonschema.Schema
}

// CompileOutput compiles the shape for result validation.
func (s Shape) CompileOutput() (*OutputSchema, error) {
	compiled, err := s.compile(false)
	if err != nil {
		return nil, err
	}
	return &OutputSchema{shape: s, compiled: compiled}, nil
}

// Shape returns the declared shape.
func (out *OutputSchema) Shape() Shape { return out.shape }

// Validate checks the handler result against the declared output shape.
// A mismatch is a server defect, surfaced as *ContractError.
func (out *OutputSchema) Validate(raw map[string]any) (map[string]any, error) {
	result, err := out.compiled.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, &ContractError{Issues: []Issue{{Field: "(root)", Constraint: err.Error()}}}
	}
	if !result.Valid() {
		return nil, &ContractError{Issues: collectIssues(result)}
	}
	return raw, nil
}

// collectIssues converts gojsonschema result errors into field-level issues.
func collectIssues(result *gojsonschema.Result) []Issue {
	issues := make([]Issue, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		issues = append(issues, Issue{
			Field:      re.Field(),
			Constraint: re.Description(),
			Value:      re.Value(),
		})
	}
	return issues
}
