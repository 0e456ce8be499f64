package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/oxsci/toolgate/internal/common"
	"github.com/oxsci/toolgate/internal/config"
	"github.com/oxsci/toolgate/internal/dispatch"
	"github.com/oxsci/toolgate/internal/registry"
)

// ToolsHandler serves the tool surface: discovery, listing, and invocation.
type ToolsHandler struct {
	dispatcher  *dispatch.Dispatcher
	serviceName string
	logger      *common.Logger
}

// NewToolsHandler creates the tool surface handler.
func NewToolsHandler(dispatcher *dispatch.Dispatcher, serviceName string, logger *common.Logger) *ToolsHandler {
	return &ToolsHandler{
		dispatcher:  dispatcher,
		serviceName: serviceName,
		logger:      logger,
	}
}

// invokeBody is the request payload for POST /tools/{name}.
type invokeBody struct {
	Arguments map[string]any `json:"arguments"`
	Context   map[string]any `json:"context"`
}

// Discover handles GET /tools/discover: enabled tools only, in registration
// order, with their full contracts. This is the surface automated callers use
// to learn what they may invoke.
func (h *ToolsHandler) Discover(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	discoverable := h.dispatcher.Registry().Discoverable()
	tools := make([]map[string]any, 0, len(discoverable))
	for _, t := range discoverable {
		tools = append(tools, toolContract(t))
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data": map[string]any{
			"tools": tools,
			"count": len(tools),
			"server_info": map[string]string{
				"name":    h.serviceName,
				"version": config.GetVersion(),
			},
		},
	})
}

// List handles GET /tools/list: every registered tool, enabled or not, with
// its administrative status. Unlike discovery this view hides nothing.
func (h *ToolsHandler) List(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	all := h.dispatcher.Registry().All()
	tools := make([]map[string]any, 0, len(all))
	for _, entry := range all {
		contract := toolContract(entry.Tool)
		contract["status"] = entry.Status
		tools = append(tools, contract)
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data": map[string]any{
			"tools": tools,
			"count": len(tools),
		},
	})
}

// Invoke handles POST /tools/{name}. The tool name comes from the path; the
// body carries arguments and an optional context seed. Disabled tools are
// invocable here even though discovery hides them.
func (h *ToolsHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/tools/"), "/")
	if name == "" || strings.ContainsRune(name, '/') {
		WriteError(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}

	// An absent body is fine: tools with no required arguments are
	// invocable with a bare POST.
	var body invokeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, http.StatusBadRequest, "invalid_request", "request body must be a JSON object")
		return
	}

	resp := h.dispatcher.Dispatch(r.Context(), dispatch.Request{
		Tool:      name,
		Arguments: body.Arguments,
		Seed:      body.Context,
		Identity:  IdentityFromRequest(r, body.Context),
		RequestID: CorrelationID(r),
	})

	WriteJSON(w, resp.HTTPStatus, resp)
}

// toolContract is the wire representation of one tool's contract.
func toolContract(t *registry.Tool) map[string]any {
	return map[string]any{
		"name":          t.Name,
		"description":   t.Description,
		"version":       t.Version,
		"input_schema":  t.Input.JSONSchema(true),
		"output_schema": t.Output.JSONSchema(false),
	}
}
