// Package dispatch routes one inbound tool invocation through resolution,
// validation, execution, and teardown. Per request it owns the shared
// context and the downstream client lifecycle: both are created when
// handling starts and torn down on every exit path.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/oxsci/toolgate/internal/common"
	"github.com/oxsci/toolgate/internal/forward"
	"github.com/oxsci/toolgate/internal/registry"
	"github.com/oxsci/toolgate/internal/schema"
	"github.com/oxsci/toolgate/internal/toolctx"
)

// Request is one inbound tool invocation as delivered by the transport.
type Request struct {
	Tool      string
	Arguments map[string]any
	Seed      map[string]any
	Identity  forward.Identity
	RequestID string
}

// ErrorBody is the structured error surface returned to callers.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Response is the dispatch outcome: either validated data or a classified
// error, plus the transport status the handler layer should use.
type Response struct {
	Status     string         `json:"status"`
	Data       map[string]any `json:"data,omitempty"`
	Error      *ErrorBody     `json:"error,omitempty"`
	HTTPStatus int            `json:"-"`
}

// Error kinds surfaced in ErrorBody.Kind.
const (
	KindToolNotFound          = "tool_not_found"
	KindInvalidArguments      = "invalid_arguments"
	KindInternalContract      = "internal_contract_error"
	KindMissingAuthContext    = "missing_auth_context"
	KindDownstreamAuth        = "downstream_auth_error"
	KindDownstreamUnavailable = "downstream_unavailable"
	KindDownstream            = "downstream_error"
	KindHandler               = "handler_error"
)

// HandlerError wraps an unclassified failure raised inside a tool handler.
type HandlerError struct {
	Tool string
	Err  error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// Dispatcher resolves, validates, executes, and tears down tool invocations.
type Dispatcher struct {
	registry  *registry.Registry
	forwarder *forward.Forwarder
	logger    *common.Logger
}

// New creates a Dispatcher. The registry must be fully populated before the
// first Dispatch call; it is treated as read-only from here on.
func New(reg *registry.Registry, fwd *forward.Forwarder, logger *common.Logger) *Dispatcher {
	return &Dispatcher{
		registry:  reg,
		forwarder: fwd,
		logger:    logger,
	}
}

// Registry exposes the registry for the discovery and listing surfaces,
// which read tool metadata without executing anything.
func (d *Dispatcher) Registry() *registry.Registry {
	return d.registry
}

// Dispatch runs one invocation through the request state machine:
// Received -> Resolved -> Validated -> Executing -> Completed | Failed.
// Teardown of the shared context and downstream client runs on every exit
// path, success or failure.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) *Response {
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	logger := d.logger.WithCorrelationId(requestID)

	// Resolved
	tool, err := d.registry.Lookup(req.Tool)
	if err != nil {
		logger.Warn().Str("tool", req.Tool).Msg("tool not found")
		return d.fail(err)
	}

	// Request-scoped state; torn down unconditionally.
	sc := toolctx.New(requestID, req.Seed)
	dc := d.forwarder.ClientFor(requestID, req.Identity)
	defer func() {
		sc.Close()
		d.forwarder.Release(requestID)
	}()

	// Validated
	args, err := tool.InputSchema.Validate(req.Arguments)
	if err != nil {
		logger.Warn().Str("tool", tool.Name).Str("error", err.Error()).Msg("argument validation failed")
		return d.fail(err)
	}

	// Executing
	result, err := tool.Handler(ctx, args, sc, dc)
	if err != nil {
		d.logFailure(logger, tool.Name, req.Identity.UserID, err)
		return d.fail(classifyHandlerFailure(tool.Name, err))
	}

	// Completed
	data, err := tool.OutputSchema.Validate(result)
	if err != nil {
		logger.Error().Str("tool", tool.Name).Str("user", req.Identity.UserID).Str("error", err.Error()).Msg("output contract violation")
		return d.fail(err)
	}

	return &Response{
		Status:     "success",
		Data:       data,
		HTTPStatus: http.StatusOK,
	}
}

// classifyHandlerFailure keeps downstream and validation errors as-is so
// they map to their own kinds, and wraps everything else as a HandlerError.
func classifyHandlerFailure(tool string, err error) error {
	var authErr *forward.AuthError
	var unavailErr *forward.UnavailableError
	var callErr *forward.CallError
	switch {
	case errors.Is(err, forward.ErrMissingAuthContext),
		errors.As(err, &authErr),
		errors.As(err, &unavailErr),
		errors.As(err, &callErr):
		return err
	default:
		return &HandlerError{Tool: tool, Err: err}
	}
}

// logFailure logs handler failures with full context for operator diagnosis.
// Downstream failures are expected operational noise and log at warn level;
// everything else is a server-side defect and logs at error level.
func (d *Dispatcher) logFailure(logger *common.Logger, tool, userID string, err error) {
	var authErr *forward.AuthError
	var unavailErr *forward.UnavailableError
	var callErr *forward.CallError
	if errors.As(err, &authErr) || errors.As(err, &unavailErr) || errors.As(err, &callErr) {
		logger.Warn().Str("tool", tool).Str("user", userID).Str("error", err.Error()).Msg("downstream call failed")
		return
	}
	logger.Error().Str("tool", tool).Str("user", userID).Str("error", err.Error()).Msg("tool execution failed")
}

// fail maps a classified failure to the structured error body and transport
// status for the Failed terminal state.
func (d *Dispatcher) fail(err error) *Response {
	kind, status, details := classify(err)
	return &Response{
		Status:     "error",
		Error:      &ErrorBody{Kind: kind, Message: err.Error(), Details: details},
		HTTPStatus: status,
	}
}

// classify maps the error taxonomy to wire kinds and transport statuses.
func classify(err error) (kind string, status int, details any) {
	var notFound *registry.NotFoundError
	var argsErr *schema.ArgumentsError
	var contractErr *schema.ContractError
	var authErr *forward.AuthError
	var unavailErr *forward.UnavailableError
	var callErr *forward.CallError

	switch {
	case errors.As(err, &notFound):
		return KindToolNotFound, http.StatusNotFound, nil
	case errors.As(err, &argsErr):
		return KindInvalidArguments, http.StatusUnprocessableEntity, argsErr.Issues
	case errors.As(err, &contractErr):
		return KindInternalContract, http.StatusInternalServerError, contractErr.Issues
	case errors.Is(err, forward.ErrMissingAuthContext):
		return KindMissingAuthContext, http.StatusInternalServerError, nil
	case errors.As(err, &authErr):
		return KindDownstreamAuth, http.StatusBadGateway, map[string]any{"downstream_status": authErr.Status, "downstream_body": authErr.Body}
	case errors.As(err, &unavailErr):
		return KindDownstreamUnavailable, http.StatusGatewayTimeout, nil
	case errors.As(err, &callErr):
		return KindDownstream, http.StatusBadGateway, map[string]any{"downstream_status": callErr.Status, "downstream_body": callErr.Body}
	default:
		return KindHandler, http.StatusInternalServerError, nil
	}
}
