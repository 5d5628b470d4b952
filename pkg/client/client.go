package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/attendo/attendo/pkg/credential"
	"github.com/attendo/attendo/pkg/logger"
)

// maxBodySize bounds every response body read, CSV exports included. A
// larger body is an error rather than a truncated result.
var maxBodySize int64 = 32 << 20

var errBodyTooLarge = errors.New("response body exceeds limit")

// TokenStore is the credential storage the client reads before every request.
// *credential.Store implements it.
type TokenStore interface {
	Get() (string, bool)
	Set(token string, ttl time.Duration) error
	Clear() error
}

// Client is the Attendo API client. It is safe for concurrent use.
type Client struct {
	baseURL        string
	tokens         TokenStore
	tokenTTL       time.Duration
	httpClient     *http.Client
	log            *logger.Logger
	onUnauthorized func()

	Accounts      *AccountService
	Organizations *OrganizationService
	Halls         *HallService
	Sessions      *SessionService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout sets the overall per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the structured logger used for request diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTokenTTL sets how long a token obtained by Login stays valid locally.
func WithTokenTTL(d time.Duration) Option {
	return func(c *Client) { c.tokenTTL = d }
}

// WithUnauthorizedHandler registers fn to run after a protected request was
// rejected with 401 and the credential was cleared. The console uses it to
// switch to the login view.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a new API client. A nil tokens uses an in-memory store.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	if tokens == nil {
		tokens = credential.NewMemory()
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tokens:   tokens,
		tokenTTL: credential.DefaultTTL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Accounts = &AccountService{c: c}
	c.Organizations = &OrganizationService{c: c}
	c.Halls = &HallService{c: c}
	c.Sessions = &SessionService{c: c}
	return c
}

// BaseURL returns the API origin all paths are relative to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RawResponse is an HTTP response with its body fully read.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Send performs an authenticated request. body, when non-nil, is sent as JSON.
// A 401 clears the credential, runs the unauthorized handler and returns
// ErrUnauthorized. Network and read failures return *TransportError. Any
// other status is returned as-is for the caller to interpret.
func (c *Client) Send(ctx context.Context, method, path string, body any) (*RawResponse, error) {
	return c.doRequest(ctx, method, path, body, true)
}

// sendPublic is Send for endpoints that do not require a session (login,
// registration, password recovery). A 401 there still clears the stored
// credential but is returned like any other status, without the handler.
func (c *Client) sendPublic(ctx context.Context, method, path string, body any) (*RawResponse, error) {
	return c.doRequest(ctx, method, path, body, false)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, protected bool) (*RawResponse, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("marshal body: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("create request: %w", err)}
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.tokens.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logCtx := c.log.WithFields(ctx, map[string]any{
		"request_id": requestID,
		"method":     method,
		"path":       path,
	})
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error(logCtx, "request failed", err)
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		c.log.Error(logCtx, "read response body", err)
		return nil, &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > maxBodySize {
		c.log.Error(logCtx, "read response body", errBodyTooLarge)
		return nil, &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: errBodyTooLarge}
	}
	c.log.Debug(c.log.WithFields(logCtx, map[string]any{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}), "request completed")

	if resp.StatusCode == http.StatusUnauthorized {
		c.clearCredential(logCtx)
		if protected {
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
		}
	}
	return &RawResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// clearCredential drops whatever token the store holds after any 401.
func (c *Client) clearCredential(ctx context.Context) {
	c.log.Warn(ctx, "credential rejected, clearing session")
	if err := c.tokens.Clear(); err != nil {
		c.log.Error(ctx, "clear credential", err)
	}
}

// call sends one request and decodes its envelope.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (*Envelope[T], error) {
	raw, err := c.Send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope[T](method, path, raw)
}

// callPublic is call for endpoints that do not require a session.
func callPublic[T any](ctx context.Context, c *Client, method, path string, body any) (*Envelope[T], error) {
	raw, err := c.sendPublic(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope[T](method, path, raw)
}

func decodeEnvelope[T any](method, path string, raw *RawResponse) (*Envelope[T], error) {
	if isSuccess(raw.StatusCode) {
		env := &Envelope[T]{Success: true}
		if len(bytes.TrimSpace(raw.Body)) > 0 {
			if err := json.Unmarshal(raw.Body, env); err != nil {
				return nil, &TransportError{Method: method, Path: path, StatusCode: raw.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
			}
		}
		env.StatusCode = raw.StatusCode
		return env, nil
	}

	message, errs, ok := parseFailure(raw.Body)
	if !ok {
		return nil, &TransportError{Method: method, Path: path, StatusCode: raw.StatusCode, Err: errors.New(snippet(raw.Body))}
	}
	return &Envelope[T]{
		Success:    false,
		Message:    message,
		Errors:     errs,
		StatusCode: raw.StatusCode,
	}, nil
}

// failureBody accepts the envelope shape and, as a fallback, the ASP.NET
// problem-details shape ({title, errors: {field: [messages]}}).
type failureBody struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Title   string          `json:"title"`
	Errors  json.RawMessage `json:"errors"`
}

// parseFailure extracts message and errors from a non-2xx body. ok is false
// when the body is not a structured failure.
func parseFailure(body []byte) (message string, errs []string, ok bool) {
	var fb failureBody
	if err := json.Unmarshal(body, &fb); err != nil {
		return "", nil, false
	}
	errs = flattenErrors(fb.Errors)
	message = fb.Message
	if message == "" {
		message = fb.Title
	}
	if fb.Success == nil && message == "" && len(errs) == 0 {
		return "", nil, false
	}
	return message, errs, true
}

func flattenErrors(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	var byField map[string][]string
	if json.Unmarshal(raw, &byField) != nil {
		return nil
	}
	fields := make([]string, 0, len(byField))
	for f := range byField {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var out []string
	for _, f := range fields {
		out = append(out, byField[f]...)
	}
	return out
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// snippet renders at most 200 runes of an unstructured body for an error message.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty response body"
	}
	if r := []rune(s); len(r) > 200 {
		s = string(r[:200]) + "…"
	}
	return s
}
