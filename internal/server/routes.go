package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Service banner and unmatched-path 404
	mux.HandleFunc("/", s.app.RootHandler.ServeHTTP)

	// Operational endpoints
	mux.HandleFunc("/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)

	// Tool surface
	mux.HandleFunc("/tools/discover", s.app.ToolsHandler.Discover)
	mux.HandleFunc("/tools/list", s.app.ToolsHandler.List)
	mux.HandleFunc("/tools/", s.app.ToolsHandler.Invoke)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPBridge != nil {
		mux.Handle("/mcp", s.app.MCPBridge)
	}

	return mux
}
