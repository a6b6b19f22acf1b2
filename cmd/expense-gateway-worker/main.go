//go:build js && wasm

package main

import (
	"strings"
	"time"

	"github.com/syumai/workers"
	"github.com/syumai/workers/cloudflare"

	"github.com/dvcrn/expense-client/internal/app"
	"github.com/dvcrn/expense-client/internal/config"
	"github.com/dvcrn/expense-client/internal/credentials"
	"github.com/dvcrn/expense-client/internal/logger"
)

const kvBinding = "EXPENSE_SESSION"

func main() {
	log := logger.NewProduction()

	cfg := &config.Config{
		Env: "production",
		API: config.APIConfig{
			BaseURL:   strings.TrimRight(cloudflare.Getenv("API_BASE_URL"), "/"),
			Timeout:   config.DefaultTimeout,
			UserAgent: "expense-gateway-worker",
		},
		Gateway: config.GatewayConfig{AdminKey: cloudflare.Getenv("GATEWAY_ADMIN_KEY")},
	}
	if t, err := time.ParseDuration(cloudflare.Getenv("API_TIMEOUT")); err == nil && t > 0 {
		cfg.API.Timeout = t
	}
	if cfg.API.BaseURL == "" {
		log.Fatal().Msg("API_BASE_URL is not set")
	}

	log.Info().Msg("📦 Using Cloudflare KV session store")
	store, err := credentials.NewCloudflareKVStore(kvBinding)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Cloudflare KV store")
	}

	srv, err := app.New(cfg, store, log).NewServer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create gateway")
	}

	workers.Serve(srv)
}
