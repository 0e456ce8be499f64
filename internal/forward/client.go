package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oxsci/toolgate/internal/cache"
)

// allowedMethods is the whitelist of HTTP methods for downstream calls.
var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// Client is a downstream handle scoped to one inbound request. It is created
// lazily by Forwarder.ClientFor, reused across the request's outbound calls,
// and invalidated by Forwarder.Release when the request completes.
type Client struct {
	forwarder *Forwarder
	requestID string
	identity  Identity
	released  bool
}

// CallOptions carries the optional parts of one outbound call.
type CallOptions struct {
	// PathParams are substituted into {name} segments of the endpoint.
	PathParams map[string]string
	// QueryParams are appended to the URL. Empty values are skipped.
	QueryParams map[string]string
	// Body, when non-nil, is JSON-marshalled into the request body.
	Body any
}

// Identity returns the inbound identity this client forwards.
func (c *Client) Identity() Identity {
	return c.identity
}

// Call issues one outbound call to the data service, forwarding the inbound
// caller's credential as a Bearer authorization header. The response body is
// returned raw for the handler to interpret.
func (c *Client) Call(ctx context.Context, method, endpoint string, opts *CallOptions) ([]byte, error) {
	if c.released {
		return nil, ErrClientReleased
	}
	if c.identity.Token == "" {
		return nil, ErrMissingAuthContext
	}

	method = strings.ToUpper(method)
	if !allowedMethods[method] {
		return nil, fmt.Errorf("unsupported downstream method %q", method)
	}

	if opts == nil {
		opts = &CallOptions{}
	}

	path, err := resolvePath(endpoint, opts.PathParams)
	if err != nil {
		return nil, err
	}

	if len(opts.QueryParams) > 0 {
		query := url.Values{}
		for k, v := range opts.QueryParams {
			if v != "" {
				query.Set(k, v)
			}
		}
		if encoded := query.Encode(); encoded != "" {
			path += "?" + encoded
		}
	}

	f := c.forwarder

	// Cached GET responses skip the network entirely.
	cacheKey := ""
	if method == http.MethodGet && f.respCache != nil {
		cacheKey = cache.MakeKey(c.identity.UserID, method, path)
		if body, ok := f.respCache.Get(cacheKey); ok {
			f.logger.Debug().Str("method", method).Str("path", path).Msg("downstream cache hit")
			return body, nil
		}
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		jsonData, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to build downstream request: %w", err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	req.Header.Set("Authorization", "Bearer "+c.identity.Token)

	f.logger.Debug().Str("method", method).Str("path", path).Str("user", c.identity.UserID).Msg("downstream request")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		f.logger.Error().Str("method", method).Str("path", path).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("downstream request failed")
		return nil, &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxResponse))
	if err != nil {
		return nil, &UnavailableError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	f.logger.Debug().Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("downstream response")

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Status: resp.StatusCode, Body: string(body)}
	case resp.StatusCode >= 400:
		return nil, &CallError{Status: resp.StatusCode, Body: string(body)}
	}

	if cacheKey != "" {
		f.respCache.Set(cacheKey, body)
	}

	return body, nil
}

// resolvePath substitutes {name} placeholders with escaped values and rejects
// endpoints with unresolved placeholders, so a malformed call fails here
// rather than as a confusing 404 from the downstream service.
func resolvePath(endpoint string, params map[string]string) (string, error) {
	path := endpoint
	for name, val := range params {
		if val == "" {
			return "", fmt.Errorf("path parameter %q is empty", name)
		}
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(val))
	}
	if i := strings.IndexByte(path, '{'); i >= 0 {
		return "", fmt.Errorf("unresolved path parameter in endpoint %q", endpoint)
	}
	return path, nil
}
