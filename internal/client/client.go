// Package client implements the HTTP client used for every backend call.
//
// It attaches the stored access token to outgoing requests and, when a
// request fails with 401, refreshes the token pair once for all concurrent
// failures and replays the affected requests with the new token. When the
// refresh itself fails the stored session is cleared and the session-expired
// notifier fires.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/dvcrn/expense-client/internal/auth"
	"github.com/dvcrn/expense-client/internal/credentials"
	"github.com/dvcrn/expense-client/internal/metrics"
)

// RequestIDHeader carries the correlation id of a request.
const RequestIDHeader = "X-Request-Id"

// TokenRefresher exchanges a refresh token for a new token pair.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// Notifier is told when the session cannot be refreshed anymore.
type Notifier interface {
	Notify() bool
}

type Client struct {
	baseURL    string
	httpClient HTTPClient
	store      credentials.Store
	refresher  TokenRefresher
	notifier   Notifier
	authPaths  []string
	userAgent  string
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult
}

type Option func(*Client)

// WithHTTPClient replaces the client used for regular calls and replays.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithAuthPaths replaces the set of auth endpoints.
func WithAuthPaths(paths ...string) Option {
	return func(c *Client) { c.authPaths = append([]string(nil), paths...) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates an authenticated client for the API at baseURL. The refresher
// must use its own HTTP client, not this one.
func New(baseURL string, store credentials.Store, refresher TokenRefresher, notifier Notifier, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: NewHTTPClient(DefaultTimeout),
		store:      store,
		refresher:  refresher,
		notifier:   notifier,
		authPaths:  append([]string(nil), auth.Paths...),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.New(nil)
	}
	return c
}

// BaseURL returns the API base URL without trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// NewRequest builds a request for path relative to the base URL. A non-nil
// body is encoded as JSON.
func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Do sends req with the stored bearer token and recovers from one
// authentication failure by refreshing the token pair.
//
// As with http.Client, a non-2xx response is not an error. Errors are
// transport failures or a *RefreshError when the session could not be renewed.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	attempt, token := c.prepare(req, body)

	resp, err := c.httpClient.Do(attempt)
	if err != nil {
		return nil, err
	}
	return c.handleResponse(attempt, body, token, resp)
}

// RoundTrip lets the client sit under an http.Client or a reverse proxy.
func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	return c.Do(req)
}

// Refreshing reports whether a refresh is in flight.
func (c *Client) Refreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}

func (c *Client) isAuthEndpoint(req *http.Request) bool {
	return auth.IsAuthPath(req.URL.Path, c.authPaths)
}

// prepare clones req for sending and attaches the stored access token unless
// req targets an auth endpoint. It returns the token it attached.
func (c *Client) prepare(req *http.Request, body []byte) (*http.Request, string) {
	attempt := cloneRequest(req.Context(), req, body)
	if attempt.Header.Get(RequestIDHeader) == "" {
		attempt.Header.Set(RequestIDHeader, uuid.NewString())
	}
	if c.userAgent != "" && attempt.Header.Get("User-Agent") == "" {
		attempt.Header.Set("User-Agent", c.userAgent)
	}

	if c.isAuthEndpoint(req) {
		return attempt, ""
	}

	token, err := c.store.GetAccessToken(req.Context())
	if err != nil {
		log := c.requestLogger(attempt)
		log.Warn().Err(err).Msg("Failed to read access token, sending request without it")
		return attempt, ""
	}
	if token == "" {
		return attempt, ""
	}

	setBearer(attempt, token)
	return attempt, token
}

func (c *Client) requestLogger(req *http.Request) zerolog.Logger {
	return c.logger.With().
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Logger()
}

func setBearer(req *http.Request, token string) {
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
}

// bufferBody reads the request body once so it can be replayed verbatim.
func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()

	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return b, nil
}

func cloneRequest(ctx context.Context, req *http.Request, body []byte) *http.Request {
	r := req.Clone(ctx)
	// Set on requests received by a server; http.Client refuses them.
	r.RequestURI = ""
	if body == nil {
		r.Body = http.NoBody
		r.GetBody = nil
		return r
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	r.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	r.ContentLength = int64(len(body))
	return r
}

func drainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
