// Package toolctx provides the per-request shared context passed through a
// chain of tool invocations. A Context is owned by exactly one in-flight
// request: the dispatcher creates it, hands it to the handler, and closes it
// when the response is produced. It is not safe for concurrent mutation —
// only one logical flow owns a given Context at a time.
package toolctx

// Context is a per-request mutable key/value bag plus request identity.
type Context struct {
	requestID string
	values    map[string]any
	closed    bool
}

// New creates a Context for one inbound request, seeded with the caller's
// context payload (may be nil). The seed is copied; later mutation of the
// original map does not affect the Context.
func New(requestID string, seed map[string]any) *Context {
	values := make(map[string]any, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &Context{
		requestID: requestID,
		values:    values,
	}
}

// RequestID returns the identifier of the request that owns this Context.
func (c *Context) RequestID() string {
	return c.requestID
}

// Get returns the current value for key, or def if unset. Never fails.
func (c *Context) Get(key string, def any) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	return def
}

// Set stores value under key. Last write wins.
func (c *Context) Set(key string, value any) {
	if c.closed {
		return
	}
	c.values[key] = value
}

// Len returns the number of stored keys.
func (c *Context) Len() int {
	return len(c.values)
}

// Values returns a snapshot copy of the stored values, for diagnostics.
func (c *Context) Values() map[string]any {
	snapshot := make(map[string]any, len(c.values))
	for k, v := range c.values {
		snapshot[k] = v
	}
	return snapshot
}

// Close discards all stored values. The dispatcher calls this on every exit
// path; a closed Context ignores writes and serves only defaults.
func (c *Context) Close() {
	c.closed = true
	c.values = map[string]any{}
}

// Closed reports whether Close has been called.
func (c *Context) Closed() bool {
	return c.closed
}
