package mcpbridge

import (
	"context"

	"github.com/oxsci/toolgate/internal/forward"
)

// contextKey is the type for context keys used by the bridge.
type contextKey string

const (
	identityKey  contextKey = "identity"
	requestIDKey contextKey = "request_id"
)

// withIdentity attaches the caller identity to the context so tool handlers
// invoked by the MCP server can recover it.
func withIdentity(ctx context.Context, id forward.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// identityFromContext returns the caller identity, if any.
func identityFromContext(ctx context.Context) (forward.Identity, bool) {
	id, ok := ctx.Value(identityKey).(forward.Identity)
	return id, ok
}

// withRequestID attaches the inbound correlation ID to the context.
func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// requestIDFromContext returns the correlation ID, or empty string.
func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
