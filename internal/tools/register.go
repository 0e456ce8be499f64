package tools

import (
	"fmt"

	"github.com/oxsci/toolgate/internal/registry"
)

// RegisterAll registers the shipped tools. Runs once during startup, before
// the server listens.
func RegisterAll(reg *registry.Registry) error {
	defs := []registry.Definition{
		ExampleTool(),
		ToolTemplate(),
		SavePDFSection(),
		FetchOverviewSections(),
	}
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return fmt.Errorf("failed to register %s: %w", def.Name, err)
		}
	}
	return nil
}
