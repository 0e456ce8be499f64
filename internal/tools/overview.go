package tools

import (
	"context"
	"encoding/json"

	"github.com/oxsci/toolgate/internal/forward"
	"github.com/oxsci/toolgate/internal/registry"
	"github.com/oxsci/toolgate/internal/schema"
	"github.com/oxsci/toolgate/internal/toolctx"
)

// FetchOverviewSections reads an overview's sections from the data service,
// forwarding the caller's credential. Disabled: it exists to demonstrate the
// downstream call pattern and the endpoint may not exist on every deployment.
func FetchOverviewSections() registry.Definition {
	return registry.Definition{
		Name:        "fetch_overview_sections",
		Description: "Fetch an overview's sections from the data service",
		Version:     "1.0.0",
		Enabled:     false,
		Input: schema.Shape{Fields: []schema.Field{
			{Name: "overview_id", Type: "string", Description: "Overview ID to fetch sections for", Required: true},
			{Name: "user_id", Type: "string", Description: "Optional user ID for filtering"},
		}},
		Output: schema.Shape{Fields: []schema.Field{
			{Name: "overview_id", Type: "string", Description: "Overview ID that was fetched", Required: true},
			{Name: "sections", Type: "array", Items: "object", Description: "Sections from the data service", Required: true},
			{Name: "metadata", Type: "object", Description: "Additional metadata about the operation"},
		}},
		Handler: fetchOverviewSectionsHandler,
	}
}

func fetchOverviewSectionsHandler(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
	overviewID := argString(args, "overview_id")

	userID := argString(args, "user_id")
	if userID == "" {
		userID = contextString(sc, "user_id", "")
	}

	query := map[string]string{}
	if userID != "" {
		query["user_id"] = userID
	}

	sections := []any{}
	var metadata map[string]any

	body, err := dc.Call(ctx, "GET", "/article_structured_contents/overviews/{overview_id}/sections", &forward.CallOptions{
		PathParams:  map[string]string{"overview_id": overviewID},
		QueryParams: query,
	})
	if err != nil {
		if msg, ok := downstreamFailure(err); ok {
			metadata = map[string]any{"error": msg}
		} else {
			return nil, err
		}
	} else {
		if err := json.Unmarshal(body, &sections); err != nil {
			metadata = map[string]any{"error": "data service returned a non-list response"}
			sections = []any{}
		} else {
			metadata = map[string]any{
				"overview_id":   overviewID,
				"user_id":       userID,
				"section_count": len(sections),
			}
		}
	}

	sc.Set("last_overview_id", overviewID)
	sc.Set("last_sections", sections)

	return map[string]any{
		"overview_id": overviewID,
		"sections":    sections,
		"metadata":    metadata,
	}, nil
}
