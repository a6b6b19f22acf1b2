// Package server is a local gateway that forwards API calls with the stored
// session and exposes session administration.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dvcrn/expense-client/internal/api"
	"github.com/dvcrn/expense-client/internal/client"
	"github.com/dvcrn/expense-client/internal/session"
)

// APIPrefix is the path prefix forwarded to the backend.
const APIPrefix = "/api"

// Upstream sends requests to the backend with the stored session attached.
type Upstream interface {
	http.RoundTripper
	BaseURL() string
	Refreshing() bool
}

type Server struct {
	upstream Upstream
	auth     *api.AuthService
	gatherer prometheus.Gatherer
	adminKey string
	proxy    *httputil.ReverseProxy
	mux      *http.ServeMux
	logger   zerolog.Logger
	expired  atomic.Bool
}

type Option func(*Server)

// WithAdminKey sets the key required by the /api and /admin endpoints.
func WithAdminKey(key string) Option {
	return func(s *Server) { s.adminKey = key }
}

// WithGatherer exposes g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// New creates the gateway and registers it as the session-expired handler of notifier.
func New(logger zerolog.Logger, upstream Upstream, authSvc *api.AuthService, notifier *session.Notifier, opts ...Option) (*Server, error) {
	target, err := url.Parse(upstream.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}

	s := &Server{
		upstream: upstream,
		auth:     authSvc,
		mux:      http.NewServeMux(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, APIPrefix)
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.Out.Header.Del("Authorization")
			pr.Out.Header.Del("X-API-Key")
		},
		Transport:     upstream,
		FlushInterval: -1,
		ErrorHandler:  s.proxyErrorHandler,
	}

	if notifier != nil {
		notifier.RegisterHandler(s.onSessionExpired)
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	// Forwarded calls act as the stored user, so they need the admin key too.
	s.mux.HandleFunc(APIPrefix+"/", s.adminMiddleware(s.proxy.ServeHTTP))
	s.mux.HandleFunc("/health", s.healthHandler)
	if s.gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	s.mux.HandleFunc("/admin/session", s.adminMiddleware(s.sessionHandler))
	s.mux.HandleFunc("/", s.notFoundHandler)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.loggingMiddleware(s.mux).ServeHTTP(w, r)
}

// Expired reports whether the session expired since the last login.
func (s *Server) Expired() bool {
	return s.expired.Load()
}

func (s *Server) onSessionExpired() {
	s.expired.Store(true)
	s.logger.Warn().Msg("🔒 Session expired, log in again through /admin/session")
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.logger.Info().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Str("remote_addr", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Msg("Incoming request")
		next.ServeHTTP(w, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Dur("duration", time.Since(start)).
			Msg("Finished request")
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn().
		Str("method", r.Method).
		Str("uri", r.RequestURI).
		Str("remote_addr", r.RemoteAddr).
		Str("user_agent", r.UserAgent()).
		Msg("Unhandled route")
	http.NotFound(w, r)
}

func (s *Server) proxyErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, client.ErrSessionExpired) {
		s.logger.Warn().Err(err).Str("uri", r.RequestURI).Msg("Session expired while forwarding request")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "session expired", StatusCode: http.StatusUnauthorized})
		return
	}

	s.logger.Error().Err(err).Str("uri", r.RequestURI).Msg("Error making request to backend")
	writeJSON(w, http.StatusBadGateway, errorResponse{Message: "upstream request failed", StatusCode: http.StatusBadGateway})
}

type errorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
