// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Content types understood by the body encoder.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Header names set by the client.
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
)

// DefaultTimeout bounds a single request when no other timeout is configured.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is buffered.
const maxResponseBytes = 10 << 20

const instrumentationName = "github.com/holomush/authclient/internal/apiclient"

// TokenSource yields the bearer token to attach, if any.
// Implementations must be safe for concurrent use.
type TokenSource interface {
	Token() (string, bool)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func() (string, bool)

// Token implements TokenSource.
func (f TokenSourceFunc) Token() (string, bool) { return f() }

// noTokens is used until a real source is bound.
var noTokens = TokenSourceFunc(func() (string, bool) { return "", false })

// Client sends requests to one backend.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	logger      *slog.Logger
	tracer      trace.Tracer
	userAgent   string
	contentType string

	mu     sync.RWMutex
	tokens TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		if ts != nil {
			c.tokens = ts
		}
	}
}

// WithLogger sets the logger used for request tracing at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a Client for baseURL, which must be an absolute http or https URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, oops.Code("API_BASE_URL_INVALID").With("base_url", baseURL).Wrap(err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, oops.Code("API_BASE_URL_INVALID").
			With("base_url", baseURL).
			Errorf("base URL must be an absolute http(s) URL")
	}

	c := &Client{
		baseURL:     u,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		logger:      slog.Default(),
		tracer:      otel.Tracer(instrumentationName),
		userAgent:   "authclient",
		contentType: ContentTypeJSON,
		tokens:      noTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetTokenSource binds the token source after construction. Sessions are
// usually built after the client they call, so this closes the loop.
func (c *Client) SetTokenSource(ts TokenSource) {
	if ts == nil {
		ts = noTokens
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *Client) tokenSource() TokenSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

// Post sends a POST request with body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

// Put sends a PUT request with body.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

// Patch sends a PATCH request with body.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, opts...)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// Do sends a request to path, relative to the base URL.
//
// Body encoding:
//   - nil: no body
//   - url.Values: form-urlencoded
//   - []byte, string, io.Reader: sent as-is with the default content type
//   - anything else: JSON
//
// A non-2xx response is returned as an error wrapping *ResponseError.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	reader, contentType, err := encodeBody(body, c.contentType)
	if err != nil {
		return nil, oops.Code("API_ENCODE_FAILED").
			With("method", method).
			With("path", path).
			Wrap(err)
	}

	ctx, span := c.tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", target.Path),
			attribute.String("server.address", target.Host),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, oops.Code("API_REQUEST_INVALID").
			With("method", method).
			With("path", path).
			Wrap(err)
	}

	requestID := ulid.Make().String()
	req.Header.Set("Accept", ContentTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	ro := requestOptions{header: make(http.Header)}
	for _, opt := range opts {
		opt(&ro)
	}
	for key, values := range ro.header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	// Outbound interceptor: always read the token at send time.
	if token, ok := c.tokenSource().Token(); ok && token != "" {
		req.Header.Set(HeaderAuthorization, "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		recordRequest(method, path, StatusTransportError, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		c.logger.DebugContext(ctx, "api request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"duration", elapsed,
			"error", err,
		)
		return nil, oops.Code("API_TRANSPORT").
			With("method", method).
			With("path", path).
			With("request_id", requestID).
			Wrap(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		recordRequest(method, path, StatusTransportError, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, oops.Code("API_TRANSPORT").
			With("method", method).
			With("path", path).
			With("request_id", requestID).
			Wrap(err)
	}

	recordRequest(method, path, statusClass(resp.StatusCode), elapsed)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.DebugContext(ctx, "api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", elapsed,
	)

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		respErr := &ResponseError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       data,
			Detail:     detailFrom(data),
		}
		return out, oops.Code("API_STATUS").
			With("method", method).
			With("path", path).
			With("status", resp.StatusCode).
			With("request_id", requestID).
			Wrap(respErr)
	}

	return out, nil
}

// resolve joins path onto the base URL, keeping any base path prefix.
func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, oops.Code("API_PATH_INVALID").With("path", path).Wrap(err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, oops.Code("API_PATH_INVALID").
			With("path", path).
			Errorf("path must be relative to the base URL")
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawPath = ""
	u.RawQuery = ref.RawQuery
	u.Fragment = ""
	return &u, nil
}

// encodeBody turns body into a reader and the content type it implies.
func encodeBody(body any, defaultContentType string) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case url.Values:
		return strings.NewReader(b.Encode()), ContentTypeForm, nil
	case []byte:
		return bytes.NewReader(b), defaultContentType, nil
	case string:
		return strings.NewReader(b), defaultContentType, nil
	case io.Reader:
		return b, defaultContentType, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), ContentTypeJSON, nil
	}
}
