// Package registry holds the process-wide mapping from tool name to its
// definition and handler. The registry is populated once during startup and
// is read-only while serving, so lookups need no synchronization.
package registry

import (
	"context"
	"fmt"

	"github.com/oxsci/toolgate/internal/forward"
	"github.com/oxsci/toolgate/internal/schema"
	"github.com/oxsci/toolgate/internal/toolctx"
)

// Handler is the business-logic function implementing one tool. The
// dispatcher passes validated arguments, the request's shared context, and
// the request-scoped downstream client as explicit parameters.
type Handler func(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error)

// Definition is the identity and contract of one tool, supplied at
// registration. Name is immutable after registration; Enabled controls
// discoverability only, not invocability.
type Definition struct {
	Name        string
	Description string
	Version     string
	Enabled     bool
	Input       schema.Shape
	Output      schema.Shape
	Handler     Handler
}

// Tool is a registered definition with its compiled schemas.
type Tool struct {
	Definition
	InputSchema  *schema.InputSchema
	OutputSchema *schema.OutputSchema
}

// NotFoundError reports a lookup for a tool that is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}

// DuplicateToolError reports a registration with an already-taken name.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool already registered: %s", e.Name)
}

// Registry is the ordered collection of registered tools.
type Registry struct {
	byName map[string]*Tool
	order  []*Tool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]*Tool),
	}
}

// Register validates and adds one tool definition. It fails with
// *DuplicateToolError when the name is taken, leaving the registry unchanged.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %q has no handler", def.Name)
	}
	if _, exists := r.byName[def.Name]; exists {
		return &DuplicateToolError{Name: def.Name}
	}

	in, err := def.Input.CompileInput()
	if err != nil {
		return fmt.Errorf("tool %q input shape: %w", def.Name, err)
	}
	out, err := def.Output.CompileOutput()
	if err != nil {
		return fmt.Errorf("tool %q output shape: %w", def.Name, err)
	}

	tool := &Tool{Definition: def, InputSchema: in, OutputSchema: out}
	r.byName[def.Name] = tool
	r.order = append(r.order, tool)
	return nil
}

// Lookup returns the tool with the given name, or *NotFoundError.
func (r *Registry) Lookup(name string) (*Tool, error) {
	tool, ok := r.byName[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return tool, nil
}

// Discoverable returns, in registration order, every enabled tool. Disabled
// tools are intentionally invisible here so in-development or internal-only
// tools can exist without being offered to automated callers.
func (r *Registry) Discoverable() []*Tool {
	tools := make([]*Tool, 0, len(r.order))
	for _, t := range r.order {
		if t.Enabled {
			tools = append(tools, t)
		}
	}
	return tools
}

// Status is the administrative view of one registered tool.
type Status struct {
	Tool   *Tool
	Status string
}

// All returns every registered tool in registration order, annotated with
// "active" or "disabled". This is the administrative listing surface,
// distinct from discovery.
func (r *Registry) All() []Status {
	statuses := make([]Status, 0, len(r.order))
	for _, t := range r.order {
		status := "active"
		if !t.Enabled {
			status = "disabled"
		}
		statuses = append(statuses, Status{Tool: t, Status: status})
	}
	return statuses
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}
