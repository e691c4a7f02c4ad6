// Package api is the HTTP client for the wellness backend. It attaches the
// bearer token, unwraps response envelopes and clears the stored
// credential when the backend answers 401.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/wellness-client/internal/metrics"
	"github.com/noah-isme/wellness-client/pkg/credential"
	appErrors "github.com/noah-isme/wellness-client/pkg/errors"
	"github.com/noah-isme/wellness-client/pkg/logger"
	"github.com/noah-isme/wellness-client/pkg/middleware/requestid"
	"github.com/noah-isme/wellness-client/pkg/response"
)

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

// Options tunes a Client. Zero values are usable.
type Options struct {
	Credentials credential.Store
	Transport   http.RoundTripper
	Timeout     time.Duration
	UserAgent   string
	Logger      *zap.Logger
	Metrics     *metrics.Service
}

// Client talks to the backend REST API.
type Client struct {
	base      *url.URL
	http      *http.Client
	creds     credential.Store
	userAgent string
	logger    *zap.Logger
	metrics   *metrics.Service
}

// New constructs a client rooted at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Credentials == nil {
		opts.Credentials = credential.NewMemoryStore()
	}

	transport := requestid.Transport(logger.Transport(opts.Logger, opts.Transport))

	return &Client{
		base:      base,
		http:      &http.Client{Transport: transport, Timeout: opts.Timeout},
		creds:     opts.Credentials,
		userAgent: opts.UserAgent,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.base.String() }

// Credentials exposes the store the client reads tokens from.
func (c *Client) Credentials() credential.Store { return c.creds }

// Do sends req and decodes the unwrapped payload into out. out may be nil.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := c.newRequest(ctx, req.Method, req.Path, req.Query, body)
	if err != nil {
		return err
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return c.send(httpReq, out)
}

// Get fetches path with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends body as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put replaces a resource.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Patch partially updates a resource.
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

// Delete removes a resource.
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.endpoint(path, query)
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	token, err := c.creds.Token(ctx)
	switch {
	case err == nil && token != "":
		httpReq.Header.Set("Authorization", "Bearer "+token)
	case err != nil && !errors.Is(err, credential.ErrNoCredential):
		c.logger.Warn("credential lookup failed", zap.Error(err))
	}
	return httpReq, nil
}

func (c *Client) send(httpReq *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.ObserveAPIRequest(httpReq.Method, routeLabel(httpReq.URL.Path, c.base.Path), 0, time.Since(start))
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	c.metrics.ObserveAPIRequest(httpReq.Method, routeLabel(httpReq.URL.Path, c.base.Path), resp.StatusCode, time.Since(start))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if clearErr := c.creds.Clear(httpReq.Context()); clearErr != nil {
			c.logger.Warn("failed to clear credential after 401", zap.Error(clearErr))
		}
	}

	return response.Decode(resp.StatusCode, payload, out)
}

func (c *Client) endpoint(path string, query url.Values) string {
	target := strings.TrimRight(c.base.String(), "/") + "/" + strings.TrimLeft(path, "/")
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target
}

// ResolveURL turns a URL returned by the backend into an absolute one.
// Paths starting with "/" are resolved against the API origin, other
// relative paths against the API base.
func (c *Client) ResolveURL(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.IsAbs() {
		return raw
	}
	if strings.HasPrefix(raw, "/") {
		return c.base.Scheme + "://" + c.base.Host + raw
	}
	return strings.TrimRight(c.base.String(), "/") + "/" + raw
}

// routeLabel keeps metric cardinality bounded by reducing a request path
// to its first resource segment below the API root.
func routeLabel(path, basePath string) string {
	rest := strings.TrimPrefix(path, strings.TrimRight(basePath, "/"))
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return "/"
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return "/" + rest
}
