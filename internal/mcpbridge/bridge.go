// Package mcpbridge exposes the tool registry over the Model Context
// Protocol (JSON-RPC over HTTP), reusing the dispatcher so both transports
// share one validation and execution path.
package mcpbridge

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/oxsci/toolgate/internal/common"
	"github.com/oxsci/toolgate/internal/config"
	"github.com/oxsci/toolgate/internal/dispatch"
	"github.com/oxsci/toolgate/internal/forward"
	"github.com/oxsci/toolgate/internal/handlers"
)

// Bridge is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Bridge struct {
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
}

// NewBridge creates the MCP bridge over the given dispatcher.
func NewBridge(serviceName string, d *dispatch.Dispatcher, logger *common.Logger) *Bridge {
	mcpSrv := mcpserver.NewMCPServer(
		serviceName,
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	toolCount := registerTools(mcpSrv, d)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().
		Int("tools", toolCount).
		Msg("MCP bridge initialized")

	return &Bridge{
		streamable: streamable,
		logger:     logger,
	}
}

// ServeHTTP extracts the caller identity from the Authorization header and
// delegates to the mcp-go StreamableHTTPServer. Requests without a Bearer
// credential are rejected: MCP callers always act on behalf of a user whose
// credential must be forwardable downstream.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "unauthorized",
			"error_description": "Bearer credential required to access MCP endpoint",
		})
		return
	}

	ctx := withIdentity(r.Context(), identity)
	ctx = withRequestID(ctx, handlers.CorrelationID(r))
	b.streamable.ServeHTTP(w, r.WithContext(ctx))
}

// identityFromRequest builds the forwardable identity from the Authorization
// header. The token is opaque: when it parses as a JWT the sub claim names
// the user, otherwise the user ID stays empty. No verification happens here.
func identityFromRequest(r *http.Request) (forward.Identity, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return forward.Identity{}, false
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if token == "" {
		return forward.Identity{}, false
	}

	return forward.Identity{UserID: extractSub(token), Token: token}, true
}

// extractSub base64url-decodes the JWT payload (middle segment) and returns
// the "sub" claim. Returns empty string on any failure.
func extractSub(token string) string {
	parts := strings.SplitN(token, ".", 3)
	if len(parts) < 2 {
		return ""
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ""
	}

	var claims struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ""
	}

	return claims.Sub
}
