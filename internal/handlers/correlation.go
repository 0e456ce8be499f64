package handlers

import (
	"context"
	"net/http"
)

// contextKey is the type for context keys used by the HTTP layer.
type contextKey string

const correlationIDKey contextKey = "correlation_id"

// WithCorrelationID stores the request's correlation ID in the context.
// The middleware chain calls this once per request.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID returns the correlation ID assigned to the request, or empty
// string when the middleware chain did not run (direct handler tests).
func CorrelationID(r *http.Request) string {
	id, _ := r.Context().Value(correlationIDKey).(string)
	return id
}
