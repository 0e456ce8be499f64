package forward

import (
	"errors"
	"fmt"
)

// ErrMissingAuthContext is returned when a downstream client is requested
// without an inbound credential. Failing here, before any network attempt,
// keeps the root cause next to the call site instead of surfacing as a
// confusing auth rejection from the downstream service.
var ErrMissingAuthContext = errors.New("downstream call requires an inbound credential: none present on request")

// ErrClientReleased is returned when a downstream client is used after its
// owning request completed. A released client must fail loudly rather than
// silently reuse a stale credential.
var ErrClientReleased = errors.New("downstream client used after request completion")

// AuthError reports that the downstream rejected the forwarded credential
// (401/403). Status and Body carry the downstream's response for diagnosis.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("downstream rejected forwarded credentials (%d): %s", e.Status, e.Body)
}

// UnavailableError reports a transport-level failure (connection refused,
// timeout) reaching the downstream service.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("downstream unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// CallError reports any other non-success downstream status.
type CallError struct {
	Status int
	Body   string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("downstream returned %d: %s", e.Status, e.Body)
}
