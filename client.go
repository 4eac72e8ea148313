package s3req

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client signs and dispatches requests. Each call is independent: all
// intermediate signing state is call-local, so a Client may be used
// concurrently from multiple goroutines.
type Client struct {
	creds      Credentials
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithClock sets the clock used to timestamp signatures. Tests supply a
// fixed instant to make signatures reproducible.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithLogger enables debug logging of dispatched requests. The secret
// key and signature are never logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client with the given credentials and options.
//
// Credentials must be non-empty; beyond that no format validation is
// performed, so malformed keys surface as an authentication failure from
// the server rather than a local error.
func New(creds Credentials, opts ...Option) (*Client, error) {
	if creds.AccessKey == "" {
		return nil, ErrAccessKeyRequired
	}
	if creds.SecretKey == "" {
		return nil, ErrSecretKeyRequired
	}

	c := &Client{
		creds:      creds,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Send signs the payload for the target and issues exactly one HTTP
// request. The response is returned unmodified: no retries, no
// interpretation of the status code or body. Transport failures are the
// only error path.
func (c *Client) Send(ctx context.Context, target Target, payload Payload) (*Response, error) {
	signed := Sign(c.creds, target, payload, c.now())

	var body io.Reader = http.NoBody
	if signed.Body != nil {
		body = bytes.NewReader(signed.Body)
	}

	req, err := http.NewRequestWithContext(ctx, signed.Method, signed.URL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for _, h := range signed.Headers {
		if h.Name == "host" {
			req.Host = h.Value
			continue
		}
		req.Header.Set(h.Name, h.Value)
	}
	if signed.Body != nil {
		req.ContentLength = int64(len(signed.Body))
	}

	if c.logger != nil {
		c.logger.Debug("dispatching signed request",
			"method", signed.Method,
			"url", signed.URL,
			"signed_headers", signed.SignedHeaders,
			"scope", signed.CredentialScope,
		)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

// Get fetches an object.
func (c *Client) Get(ctx context.Context, target Target) (*Response, error) {
	return c.Send(ctx, target, Payload{Method: http.MethodGet})
}

// Put stores an object. A nil body is sent as an empty-payload request.
func (c *Client) Put(ctx context.Context, target Target, body []byte, mimeType string) (*Response, error) {
	return c.Send(ctx, target, Payload{Method: http.MethodPut, Body: body, MimeType: mimeType})
}

// Delete removes an object.
func (c *Client) Delete(ctx context.Context, target Target) (*Response, error) {
	return c.Send(ctx, target, Payload{Method: http.MethodDelete})
}
