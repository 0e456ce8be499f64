package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oxsci/toolgate/internal/forward"
	"github.com/oxsci/toolgate/internal/registry"
	"github.com/oxsci/toolgate/internal/schema"
	"github.com/oxsci/toolgate/internal/toolctx"
)

// SavePDFSection persists one extracted PDF section to the data service.
// Section titles and content routinely carry Unicode, so the payload goes
// out as UTF-8 JSON end to end.
func SavePDFSection() registry.Definition {
	return registry.Definition{
		Name:        "save_pdf_section",
		Description: "Save PDF section to data service with proper UTF-8 encoding",
		Version:     "1.0.0",
		Enabled:     true,
		Input: schema.Shape{Fields: []schema.Field{
			{Name: "paper_id", Type: "string", Description: "Paper ID", Required: true},
			{Name: "section_title", Type: "string", Description: "Section title (may contain Unicode)", Required: true},
			{Name: "section_content", Type: "string", Description: "Section content (may contain Unicode)", Required: true},
			{Name: "section_order", Type: "integer", Description: "Section order number", Required: true},
		}},
		Output: schema.Shape{Fields: []schema.Field{
			{Name: "success", Type: "boolean", Description: "Whether the save was successful", Required: true},
			{Name: "section_id", Type: "string", Description: "Created section ID"},
			{Name: "error", Type: "string", Description: "Error message if failed"},
			{Name: "encoding_used", Type: "string", Description: "Encoding used for the request", Required: true},
		}},
		Handler: savePDFSectionHandler,
	}
}

func savePDFSectionHandler(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
	userID := contextString(sc, "user_id", "unknown")
	paperID := argString(args, "paper_id")

	payload := map[string]any{
		"paper_id": paperID,
		"title":    argString(args, "section_title"),
		"content":  argString(args, "section_content"),
		"order":    argInt(args, "section_order", 0),
		"user_id":  userID,
	}

	body, err := dc.Call(ctx, "POST", "/article_structured_contents/sections", &forward.CallOptions{
		Body: payload,
	})
	if err != nil {
		// Downstream rejections come back as a failed save rather than a
		// tool failure, so callers can inspect the reason.
		if msg, ok := downstreamFailure(err); ok {
			return map[string]any{
				"success":       false,
				"error":         msg,
				"encoding_used": "utf-8",
			}, nil
		}
		return nil, err
	}

	var created struct {
		ID        string `json:"id"`
		SectionID string `json:"section_id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("unexpected response from data service: %w", err)
	}
	sectionID := created.ID
	if sectionID == "" {
		sectionID = created.SectionID
	}

	sc.Set("last_saved_section_id", sectionID)
	sc.Set("last_saved_paper_id", paperID)

	return map[string]any{
		"success":       true,
		"section_id":    sectionID,
		"encoding_used": "utf-8",
	}, nil
}

// downstreamFailure reports whether the error is a downstream rejection the
// caller should see as a failed result, and formats its message.
func downstreamFailure(err error) (string, bool) {
	var authErr *forward.AuthError
	var callErr *forward.CallError
	switch {
	case errors.As(err, &authErr):
		return fmt.Sprintf("HTTP %d: %s", authErr.Status, authErr.Body), true
	case errors.As(err, &callErr):
		return fmt.Sprintf("HTTP %d: %s", callErr.Status, callErr.Body), true
	default:
		return "", false
	}
}
