// Package dispatch sends every backend call of the console. It attaches the
// bearer credential and the active hotel scope, and turns failures into
// *Error values. It never retries.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

// CredentialSource exposes the session values the dispatcher injects.
// session.Store implements it.
type CredentialSource interface {
	Credential() string
	ActiveScope() int64
}

// Doer is the narrow interface consumers depend on.
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

// Request is one backend call. Body, when set, is sent as JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Client is the request dispatcher.
type Client struct {
	cfg    Config
	creds  CredentialSource
	http   *http.Client
	logger *zap.SugaredLogger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client (timeout from Config).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a Client. creds may be nil for unauthenticated use.
func New(cfg Config, creds CredentialSource, opts ...Option) *Client {
	if cfg.ScopeHeader == "" {
		cfg.ScopeHeader = DefaultScopeHeader
	}
	c := &Client{
		cfg:   cfg,
		creds: creds,
		http:  &http.Client{Timeout: cfg.Timeout},
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = utilities.OrNop(c.logger)
	RegisterMetrics(nil)
	return c
}

// SetCredentials swaps the credential source. Used when the store is built
// after the client (the store's auth calls need a client first).
func (c *Client) SetCredentials(creds CredentialSource) { c.creds = creds }

// Do sends req and decodes a 2xx body into out. out may be nil. A
// *json.RawMessage out receives the body untouched.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	started := time.Now()
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := c.newRequest(ctx, method, req)
	if err != nil {
		return err
	}
	requestID := httpReq.Header.Get("X-Request-ID")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		observe(method, 0, started)
		c.logger.Warnw("backend unreachable", "method", method, "path", req.Path, "request_id", requestID, "err", err)
		return &Error{Kind: KindNetwork, Method: method, Path: req.Path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	observe(method, resp.StatusCode, started)
	if err != nil {
		return &Error{Kind: KindNetwork, Method: method, Path: req.Path, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debugw("backend call",
		"method", method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration_ms", float64(time.Since(started).Microseconds())/1000.0,
		"request_id", requestID,
	)

	if resp.StatusCode >= http.StatusBadRequest {
		e := &Error{Kind: KindHTTP, Status: resp.StatusCode, Message: serverMessage(body, resp.StatusCode), Method: method, Path: req.Path}
		c.logger.Warnw("backend rejected call", "method", method, "path", req.Path, "status", e.Status, "message", e.Message, "request_id", requestID)
		return e
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, req.Path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method string, req Request) (*http.Request, error) {
	target := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, req.Path, err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("X-Request-ID", utilities.NewRequestID())
	c.intercept(httpReq)
	return httpReq, nil
}

// intercept attaches the credential and, when a hotel is selected, the scope
// header. No scope header means an unscoped (global) request.
func (c *Client) intercept(r *http.Request) {
	if c.creds == nil {
		return
	}
	if tok := c.creds.Credential(); tok != "" {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
	if scope := c.creds.ActiveScope(); scope != 0 {
		r.Header.Set(c.cfg.ScopeHeader, strconv.FormatInt(scope, 10))
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}
