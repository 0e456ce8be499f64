package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/oxsci/toolgate/internal/forward"
	"github.com/oxsci/toolgate/internal/registry"
	"github.com/oxsci/toolgate/internal/schema"
	"github.com/oxsci/toolgate/internal/toolctx"
)

// ToolTemplate demonstrates the full parameter surface: required and
// defaulted fields, constraints, arrays, and context chaining. It stays
// disabled: hidden from discovery but listed and directly invocable, which
// is the intended state for in-development tools.
func ToolTemplate() registry.Definition {
	return registry.Definition{
		Name:        "tool_template",
		Description: "Template tool demonstrating comprehensive tool patterns and best practices",
		Version:     "1.0.0",
		Enabled:     false,
		Input: schema.Shape{Fields: []schema.Field{
			{Name: "input_text", Type: "string", Description: "Input text to process", Required: true, MinLength: schema.Int(1), MaxLength: schema.Int(10000)},
			{Name: "uppercase", Type: "boolean", Description: "Convert to uppercase if true", Default: false},
			{Name: "prefix", Type: "string", Description: "Optional prefix to add to result", MaxLength: schema.Int(100)},
			{Name: "repeat_count", Type: "integer", Description: "Number of times to repeat the text", Default: 1, Minimum: schema.Float(1), Maximum: schema.Float(10)},
			{Name: "tags", Type: "array", Description: "Optional tags to attach"},
		}},
		Output: schema.Shape{Fields: []schema.Field{
			{Name: "result", Type: "string", Description: "Processed result text", Required: true},
			{Name: "length", Type: "integer", Description: "Length of the result text", Required: true},
			{Name: "metadata", Type: "object", Description: "Additional metadata about the processing"},
			{Name: "processing_info", Type: "object", Description: "Information about how the text was processed"},
		}},
		Handler: toolTemplateHandler,
	}
}

func toolTemplateHandler(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
	input := strings.TrimSpace(argString(args, "input_text"))
	if input == "" {
		return nil, fmt.Errorf("input text cannot be empty or whitespace only")
	}

	userID := contextString(sc, "user_id", "anonymous")
	previousResult := contextString(sc, "last_result", "")
	executionCount := contextInt(sc, "execution_count", 0)

	uppercase := argBool(args, "uppercase")
	prefix := argString(args, "prefix")
	repeatCount := argInt(args, "repeat_count", 1)
	tags := argStrings(args, "tags")

	result := input
	if uppercase {
		result = strings.ToUpper(result)
	}
	if prefix != "" {
		result = prefix + result
	}
	if repeatCount > 1 {
		parts := make([]string, repeatCount)
		for i := range parts {
			parts[i] = result
		}
		result = strings.Join(parts, " ")
	}
	if previousResult != "" {
		result = fmt.Sprintf("%s\n[Previous: %s]", result, previousResult)
	}

	metadata := map[string]any{
		"processed_by":        userID,
		"tags":                tags,
		"uppercase_applied":   uppercase,
		"prefix_applied":      prefix != "",
		"repeat_count":        repeatCount,
		"has_previous_result": previousResult != "",
	}

	transformations := []string{}
	if uppercase {
		transformations = append(transformations, "uppercase")
	}
	if prefix != "" {
		transformations = append(transformations, "prefix: "+prefix)
	}
	if repeatCount > 1 {
		transformations = append(transformations, fmt.Sprintf("repeated %dx", repeatCount))
	}
	processingInfo := map[string]any{
		"original_text":   input,
		"original_length": len(input),
		"result_length":   len(result),
		"transformations": transformations,
	}

	sc.Set("last_result", result)
	sc.Set("last_length", len(result))
	sc.Set("execution_count", executionCount+1)
	sc.Set("last_tool", "tool_template")
	if len(tags) > 0 {
		sc.Set("last_tags", tags)
	}

	return map[string]any{
		"result":          result,
		"length":          len(result),
		"metadata":        metadata,
		"processing_info": processingInfo,
	}, nil
}
