// Package gateway is the single choke point for backend HTTP calls.
//
// Every outbound request flows through one Client, which runs an ordered
// chain of request and response interceptors. Credential attachment and
// session teardown on authentication failure are interceptors like any
// other, so they compose and test independently of the transport.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every request; the backend is expected to answer
// well within it.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of an error response body is read when
// extracting the backend message.
const maxErrorBody = 64 << 10

// RequestInterceptor may mutate an outgoing request before it is sent.
// Returning an error aborts the request.
type RequestInterceptor func(ctx context.Context, req *http.Request) error

// ResponseInterceptor observes every received response before the result
// is handed back to the caller. Cross-cutting recovery (session teardown
// on 401) lives here, so its side effects are complete by the time any
// caller sees the error.
type ResponseInterceptor func(ctx context.Context, resp *http.Response) error

// Client issues JSON requests against the backend API.
type Client struct {
	baseURL string
	http    *http.Client
	reqIc   []RequestInterceptor
	respIc  []ResponseInterceptor
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the transport-level request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New creates a Client for the given base URL.
func New(baseURL string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Use appends a request interceptor. Interceptors run in registration order.
func (c *Client) Use(ic RequestInterceptor) {
	c.reqIc = append(c.reqIc, ic)
}

// UseResponse appends a response interceptor. Interceptors run in
// registration order.
func (c *Client) UseResponse(ic ResponseInterceptor) {
	c.respIc = append(c.respIc, ic)
}

// Get issues a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do issues one request. body (when non-nil) is encoded as JSON; out
// (when non-nil) receives the decoded response body.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	for _, ic := range c.reqIc {
		if err := ic(ctx, req); err != nil {
			return fmt.Errorf("request interceptor: %w", err)
		}
	}

	c.log.Debug().Str("request_id", reqID).Str("method", method).Str("path", path).Msg("request")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Str("request_id", reqID).Err(err).Msg("transport failure")
		return Err(ErrUnavailable, err, "%s %s", method, path)
	}
	defer resp.Body.Close() //nolint:errcheck

	// Response interceptors run before the caller can observe the
	// outcome. Teardown on 401 happens here, so unrelated concurrent
	// callers never retry with a token that is already dead.
	for _, ic := range c.respIc {
		if err := ic(ctx, resp); err != nil {
			return fmt.Errorf("response interceptor: %w", err)
		}
	}

	c.log.Debug().Str("request_id", reqID).Int("status", resp.StatusCode).Msg("response")

	if resp.StatusCode >= 400 {
		return c.statusError(resp, method, path)
	}

	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Err(ErrMalformed, err, "read response body")
	}

	if err := json.Unmarshal(data, out); err != nil {
		return Err(ErrMalformed, err, "decode %s %s response", method, path)
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// statusError turns a non-2xx response into a typed error carrying the
// backend-provided message when one is present.
func (c *Client) statusError(resp *http.Response, method, path string) error {
	statusErr := &StatusError{Code: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(data) > 0 {
		// The backend reports failures as {"error": "..."} or
		// {"message": "..."} depending on the endpoint.
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			if payload.Error != "" {
				statusErr.Message = payload.Error
			} else {
				statusErr.Message = payload.Message
			}
		}
	}

	return Err(classify(resp.StatusCode), statusErr, "%s %s", method, path)
}
