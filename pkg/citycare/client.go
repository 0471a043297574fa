// Package citycare is the typed client for the CityCare REST API.
package citycare

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

	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/metrics"
)

const (
	DefaultBaseURL = "https://citycare.thynxai.cloud/api"
	DefaultRole    = "customer"

	defaultTimeout              = 15 * time.Second
	errorBodyReadLimit    int64 = 1024
	responseBodyReadLimit int64 = 4 << 20
)

// TokenSource yields the bearer token for the current session. An empty token
// means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Client wraps the remote endpoints the storefront consumes. It never retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	role       string
	tokens     TokenSource
	metrics    *metrics.RemoteCallMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API origin.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout bounds every call. Zero keeps the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRole sets the role sent on OTP and login requests.
func WithRole(role string) Option {
	return func(c *Client) {
		if role = strings.TrimSpace(role); role != "" {
			c.role = role
		}
	}
}

// WithMetrics records call outcomes.
func WithMetrics(m *metrics.RemoteCallMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the CityCare API client.
func NewClient(opts ...Option) (*Client, error) {
	client := &Client{
		baseURL:    DefaultBaseURL,
		role:       DefaultRole,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if _, err := url.Parse(client.baseURL); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	return client, nil
}

// ForSession returns a copy of the client that reads its bearer token from
// tokens at call time.
func (c *Client) ForSession(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// Role returns the account role used for authentication calls.
func (c *Client) Role() string {
	return c.role
}

type request struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     any
}

type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// envelope is the standard {success, message, data} wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, req request, decode func(*response) error) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "citycare client not configured")
	}
	start := time.Now()
	err := c.roundTrip(ctx, req, decode)
	c.metrics.Observe(req.endpoint, outcome(err), time.Since(start))
	return err
}

func (c *Client) roundTrip(ctx context.Context, req request, decode func(*response) error) error {
	call := pkgerrors.RemoteCall{Method: req.method, Path: req.path}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal "+req.endpoint+" request")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.buildURL(req.path, req.query), body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+req.endpoint+" request").WithDetails(call)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := strings.TrimSpace(c.tokens.Token()); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+req.endpoint+" request").WithDetails(call)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		call.Status = resp.StatusCode
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+req.endpoint+" response").WithDetails(call)
	}

	out := &response{status: resp.StatusCode, body: raw}
	if err := decode(out); err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Details() == nil {
			call.Status = resp.StatusCode
			typed.WithDetails(call)
		}
		return err
	}
	return nil
}

// expectData decodes the standard envelope and, when out is non-nil, its data.
func expectData(endpoint string, out any) func(*response) error {
	return func(resp *response) error {
		env, err := parseEnvelope(endpoint, resp)
		if err != nil {
			return err
		}
		if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeMalformedResponse, err, "decode "+endpoint+" data")
		}
		return nil
	}
}

// parseEnvelope classifies the response: transport failures for non-2xx
// without a message, rejections for success=false, malformed for bad JSON.
func parseEnvelope(endpoint string, resp *response) (*envelope, error) {
	var env envelope
	decodeErr := json.Unmarshal(resp.body, &env)

	if decodeErr == nil && env.Success != nil && !*env.Success {
		return nil, pkgerrors.New(pkgerrors.CodeRemoteRejected, rejectionMessage(env.Message))
	}
	if !resp.ok() {
		if decodeErr == nil && strings.TrimSpace(env.Message) != "" {
			return nil, pkgerrors.New(pkgerrors.CodeRemoteRejected, strings.TrimSpace(env.Message))
		}
		return nil, statusError(endpoint, resp)
	}
	if decodeErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedResponse, decodeErr, "decode "+endpoint+" response")
	}
	return &env, nil
}

func statusError(endpoint string, resp *response) error {
	msg := resp.body
	if int64(len(msg)) > errorBodyReadLimit {
		msg = msg[:errorBodyReadLimit]
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency,
		fmt.Errorf("status %d: %s", resp.status, strings.TrimSpace(string(msg))),
		endpoint+" request failed")
}

func rejectionMessage(message string) string {
	return strings.TrimSpace(message)
}

// tolerantList extracts a list from a bare array, {data: [...]} or
// {data: {records: [...]}}. Anything else, including success=false, is empty.
func tolerantList[T any](body []byte) []T {
	var items []T
	if err := json.Unmarshal(body, &items); err == nil {
		return nonNil(items)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return []T{}
	}
	if env.Success != nil && !*env.Success {
		return []T{}
	}
	if err := json.Unmarshal(env.Data, &items); err == nil {
		return nonNil(items)
	}
	var paged struct {
		Records []T `json:"records"`
	}
	if err := json.Unmarshal(env.Data, &paged); err == nil {
		return nonNil(paged.Records)
	}
	return []T{}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case pkgerrors.IsCode(err, pkgerrors.CodeRemoteRejected):
		return "rejected"
	case pkgerrors.IsCode(err, pkgerrors.CodeMalformedResponse):
		return "malformed"
	default:
		return "transport"
	}
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func idPath(parts ...any) string {
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		segs = append(segs, url.PathEscape(fmt.Sprint(p)))
	}
	return strings.Join(segs, "/")
}
