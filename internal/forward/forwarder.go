// Package forward constructs outbound calls to the data service on behalf of
// inbound callers, attaching the caller's credential unmodified. The
// credential is treated as an opaque token: it is never parsed, inspected, or
// extended here, preserving the trust boundary between services.
package forward

import (
	"net/http"
	"sync"
	"time"

	"github.com/oxsci/toolgate/internal/cache"
	"github.com/oxsci/toolgate/internal/common"
	"github.com/oxsci/toolgate/internal/config"
)

// Identity is the inbound caller's identity artifact. Token is the raw
// credential forwarded downstream; UserID is used only for logging and
// cache keying.
type Identity struct {
	UserID string
	Token  string
}

// Forwarder hands out request-scoped downstream clients. It is process-wide:
// base URL, timeout, and the underlying http.Client are resolved once, and a
// client is memoized per request ID so repeated handler calls within one
// request reuse the same instance.
type Forwarder struct {
	baseURL     string
	httpClient  *http.Client
	maxResponse int64
	logger      *common.Logger
	respCache   *cache.ResponseCache

	mu      sync.Mutex
	clients map[string]*Client
}

// cacheMaxEntries bounds the GET response cache.
const cacheMaxEntries = 256

// NewForwarder creates a Forwarder from downstream configuration.
func NewForwarder(cfg config.DownstreamConfig, logger *common.Logger) *Forwarder {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxResponse := int64(cfg.MaxResponseMB) << 20
	if maxResponse <= 0 {
		maxResponse = 50 << 20
	}

	var respCache *cache.ResponseCache
	if cfg.CacheTTLSeconds > 0 {
		respCache = cache.New(time.Duration(cfg.CacheTTLSeconds)*time.Second, cacheMaxEntries)
	}

	return &Forwarder{
		baseURL:     cfg.DataServiceURL,
		httpClient:  &http.Client{Timeout: timeout},
		maxResponse: maxResponse,
		logger:      logger,
		respCache:   respCache,
		clients:     make(map[string]*Client),
	}
}

// BaseURL returns the configured downstream base URL.
func (f *Forwarder) BaseURL() string {
	return f.baseURL
}

// ClientFor returns the downstream client for the given request, creating it
// on first use. Repeated calls with the same request ID return the same
// instance. The identity may be anonymous: tools that never call downstream
// still receive a client, and any actual call without a credential fails
// with ErrMissingAuthContext before reaching the network.
func (f *Forwarder) ClientFor(requestID string, identity Identity) *Client {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients[requestID]; ok {
		return c
	}

	c := &Client{
		forwarder: f,
		requestID: requestID,
		identity:  identity,
	}
	f.clients[requestID] = c
	return c
}

// Release tears down the client for the given request. Any later use of the
// released client fails with ErrClientReleased. Safe to call when no client
// was ever created for the request.
func (f *Forwarder) Release(requestID string) {
	f.mu.Lock()
	c, ok := f.clients[requestID]
	if ok {
		delete(f.clients, requestID)
	}
	f.mu.Unlock()

	if ok {
		c.released = true
	}
}

// ActiveClients returns the number of live request-scoped clients.
func (f *Forwarder) ActiveClients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}
