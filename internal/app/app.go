// Package app wires configuration, session storage, the authenticated client
// and the gateway together.
package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dvcrn/expense-client/internal/api"
	"github.com/dvcrn/expense-client/internal/auth"
	"github.com/dvcrn/expense-client/internal/client"
	"github.com/dvcrn/expense-client/internal/config"
	"github.com/dvcrn/expense-client/internal/credentials"
	"github.com/dvcrn/expense-client/internal/metrics"
	"github.com/dvcrn/expense-client/internal/server"
	"github.com/dvcrn/expense-client/internal/session"
)

type App struct {
	Config   *config.Config
	Store    credentials.SessionStore
	Notifier *session.Notifier
	Client   *client.Client
	API      *api.API
	Registry *prometheus.Registry
	Logger   zerolog.Logger
}

// New builds the client stack on top of store.
func New(cfg *config.Config, store credentials.SessionStore, logger zerolog.Logger) *App {
	registry := prometheus.NewRegistry()
	notifier := session.NewNotifier()

	// The refresher gets its own bare client so refresh calls bypass the interceptor.
	refresher := auth.NewRefresher(cfg.API.BaseURL, client.NewHTTPClient(cfg.API.Timeout))

	c := client.New(cfg.API.BaseURL, store, refresher, notifier,
		client.WithHTTPClient(client.NewHTTPClient(cfg.API.Timeout)),
		client.WithLogger(logger.With().Str("component", "client").Logger()),
		client.WithMetrics(metrics.New(registry)),
		client.WithUserAgent(cfg.API.UserAgent),
	)

	return &App{
		Config:   cfg,
		Store:    store,
		Notifier: notifier,
		Client:   c,
		API:      api.New(c, store),
		Registry: registry,
		Logger:   logger,
	}
}

// NewServer creates the session gateway. It takes over the session-expired handler.
func (a *App) NewServer() (*server.Server, error) {
	return server.New(
		a.Logger.With().Str("component", "gateway").Logger(),
		a.Client,
		a.API.Auth,
		a.Notifier,
		server.WithAdminKey(a.Config.Gateway.AdminKey),
		server.WithGatherer(a.Registry),
	)
}
