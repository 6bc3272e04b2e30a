package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Default header names.
const (
	DefaultCSRFHeader      = "X-CSRFToken"
	DefaultRequestIDHeader = "X-Request-Id"
	contentTypeJSON        = "application/json"
)

// Init describes one request. A nil Init issues a GET.
type Init struct {
	Method string
	// Header replaces the injected defaults entirely when non-empty. A nil
	// Init sends no defaults.
	Header http.Header
	// Body is encoded as JSON unless it is already []byte or json.RawMessage.
	Body any
}

// FetchFunc is the seam the controller issues requests through.
type FetchFunc func(ctx context.Context, path string, init *Init) (json.RawMessage, error)

// Config is the explicit transport configuration. Nothing is read from
// process state.
type Config struct {
	// BaseURL is prefixed to paths that are not absolute URLs, for example
	// "https://cms.example.test".
	BaseURL string
	// CSRFToken is sent in CSRFHeader when the request carries no headers.
	CSRFToken  string
	CSRFHeader string
	// RequestIDHeader names the header carrying a fresh uuid per request.
	RequestIDHeader string
}

// Option configures collaborators of the Client.
type Option func(*Client)

// WithHTTPClient overrides the http.Client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRequestIDFunc overrides the request id generator.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// Client performs JSON requests against the widget backend.
type Client struct {
	cfg   Config
	http  *http.Client
	newID func() string
}

// New constructs a Client.
func New(cfg Config, options ...Option) *Client {
	if cfg.CSRFHeader == "" {
		cfg.CSRFHeader = DefaultCSRFHeader
	}
	if cfg.RequestIDHeader == "" {
		cfg.RequestIDHeader = DefaultRequestIDHeader
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	client := &Client{
		cfg:   cfg,
		http:  http.DefaultClient,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(client)
	}
	return client
}

// Fetch exposes Do as a FetchFunc.
func (c *Client) Fetch() FetchFunc {
	return c.Do
}

// Do issues one request and returns the raw JSON body. It never retries.
// Failures, including an empty or non JSON body, are reported as *Error.
func (c *Client) Do(ctx context.Context, path string, init *Init) (json.RawMessage, error) {
	method := methodFor(init)
	fail := func(status int, body []byte, err error) error {
		return &Error{Method: method, Path: path, Status: status, Body: body, Err: err}
	}

	body, err := encodeBody(init)
	if err != nil {
		return nil, fail(0, nil, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fail(0, nil, err)
	}
	c.applyHeaders(req, init)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(0, nil, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(resp.StatusCode, nil, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(resp.StatusCode, payload, ErrStatus)
	}

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, fail(resp.StatusCode, payload, ErrNotJSON)
	}
	return json.RawMessage(trimmed), nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || c.cfg.BaseURL == "" {
		return path
	}
	return c.cfg.BaseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) applyHeaders(req *http.Request, init *Init) {
	if init != nil && len(init.Header) > 0 {
		for key, values := range init.Header {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}
	} else if init != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
		if c.cfg.CSRFToken != "" {
			req.Header.Set(c.cfg.CSRFHeader, c.cfg.CSRFToken)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", contentTypeJSON)
	}
	if req.Header.Get(c.cfg.RequestIDHeader) == "" {
		req.Header.Set(c.cfg.RequestIDHeader, c.newID())
	}
}

func methodFor(init *Init) string {
	if init == nil {
		return http.MethodGet
	}
	if method := strings.ToUpper(strings.TrimSpace(init.Method)); method != "" {
		return method
	}
	if init.Body != nil {
		return http.MethodPost
	}
	return http.MethodGet
}

func encodeBody(init *Init) (io.Reader, error) {
	if init == nil || init.Body == nil {
		return nil, nil
	}
	switch v := init.Body.(type) {
	case json.RawMessage:
		return bytes.NewReader(v), nil
	case []byte:
		return bytes.NewReader(v), nil
	case string:
		return strings.NewReader(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}
