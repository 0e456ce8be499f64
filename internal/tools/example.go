// Package tools defines the tools this server ships with and registers them
// at startup. Each tool declares its contract as shapes and implements a
// registry.Handler.
package tools

import (
	"context"
	"strings"

	"github.com/oxsci/toolgate/internal/forward"
	"github.com/oxsci/toolgate/internal/registry"
	"github.com/oxsci/toolgate/internal/schema"
	"github.com/oxsci/toolgate/internal/toolctx"
)

// ExampleTool processes input text, tagging the result with the calling user
// and storing it in the shared context for tool chaining.
func ExampleTool() registry.Definition {
	return registry.Definition{
		Name:        "example_tool",
		Description: "Example tool that processes input text",
		Version:     "1.0.0",
		Enabled:     true,
		Input: schema.Shape{Fields: []schema.Field{
			{Name: "input_text", Type: "string", Description: "Input text to process", Required: true},
			{Name: "uppercase", Type: "boolean", Description: "Convert to uppercase", Default: false},
		}},
		Output: schema.Shape{Fields: []schema.Field{
			{Name: "result", Type: "string", Description: "Processed result", Required: true},
			{Name: "length", Type: "integer", Description: "Length of result", Required: true},
		}},
		Handler: exampleToolHandler,
	}
}

func exampleToolHandler(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
	userID := contextString(sc, "user_id", "unknown")

	result := argString(args, "input_text")
	if argBool(args, "uppercase") {
		result = strings.ToUpper(result)
	}
	result = "[User: " + userID + "] " + result

	sc.Set("last_result", result)
	sc.Set("last_length", len(result))

	return map[string]any{
		"result": result,
		"length": len(result),
	}, nil
}
