package mcpbridge

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/oxsci/toolgate/internal/dispatch"
	"github.com/oxsci/toolgate/internal/registry"
	"github.com/oxsci/toolgate/internal/schema"
)

// registerTools exposes every discoverable tool on the MCP server. Disabled
// tools stay off this surface, mirroring HTTP discovery.
func registerTools(s *server.MCPServer, d *dispatch.Dispatcher) int {
	tools := d.Registry().Discoverable()
	for _, t := range tools {
		s.AddTool(buildTool(t), toolHandler(d, t.Name))
	}
	return len(tools)
}

// buildTool converts a registered tool's input shape into an mcp.Tool.
func buildTool(t *registry.Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}
	for _, f := range t.Input.Fields {
		opts = append(opts, buildFieldOption(f))
	}
	return mcp.NewTool(t.Name, opts...)
}

// buildFieldOption maps a shape field to the appropriate mcp-go tool option.
func buildFieldOption(f schema.Field) mcp.ToolOption {
	var opts []mcp.PropertyOption
	if f.Description != "" {
		opts = append(opts, mcp.Description(f.Description))
	}
	if f.Required {
		opts = append(opts, mcp.Required())
	}

	switch f.Type {
	case "number", "integer":
		return mcp.WithNumber(f.Name, opts...)
	case "boolean":
		return mcp.WithBoolean(f.Name, opts...)
	case "array":
		opts = append([]mcp.PropertyOption{mcp.WithStringItems()}, opts...)
		return mcp.WithArray(f.Name, opts...)
	default:
		// string, object, or unknown — all passed as string
		return mcp.WithString(f.Name, opts...)
	}
}

// toolHandler routes one MCP tool call through the dispatcher, so MCP callers
// get the same validation, execution, and teardown as HTTP callers.
func toolHandler(d *dispatch.Dispatcher, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		identity, _ := identityFromContext(ctx)

		resp := d.Dispatch(ctx, dispatch.Request{
			Tool:      name,
			Arguments: r.GetArguments(),
			Identity:  identity,
			RequestID: requestIDFromContext(ctx),
		})

		if resp.Status != "success" {
			return errorResult(resp.Error.Kind + ": " + resp.Error.Message), nil
		}

		data, err := json.Marshal(resp.Data)
		if err != nil {
			return errorResult("failed to encode tool result"), nil
		}
		return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(data))}}, nil
	}
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
