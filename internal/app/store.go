//go:build !(js && wasm)

package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/dvcrn/expense-client/internal/config"
	"github.com/dvcrn/expense-client/internal/credentials"
)

// OpenStore creates the configured session store and seeds it from
// EXPENSE_ACCESS_TOKEN / EXPENSE_REFRESH_TOKEN when both are set. The returned
// closer releases backend connections.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger zerolog.Logger) (credentials.SessionStore, io.Closer, error) {
	var (
		store  credentials.SessionStore
		closer io.Closer = nopCloser{}
	)

	switch cfg.Backend {
	case config.BackendMemory:
		store = credentials.NewMemoryStore()
		logger.Info().Msg("🧠 Using in-memory session store")
	case config.BackendFile:
		path := cfg.Path
		if path == "" {
			path = credentials.DefaultStorePath()
		}
		store = credentials.NewFSStore(path)
		logger.Info().Str("path", path).Bool("exists", credentials.FileExists(path)).Msg("📄 Using filesystem session store")
	case config.BackendKeychain:
		store = credentials.NewKeychainStore(cfg.KeychainService, &logger)
		logger.Info().Str("service", cfg.KeychainService).Msg("🔑 Using keychain session store")
	case config.BackendRedis:
		rs, err := credentials.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		store, closer = rs, rs
		logger.Info().Str("prefix", cfg.RedisPrefix).Msg("📦 Using redis session store")
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	seeded, err := credentials.SeedFromEnv(ctx, store)
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("failed to seed session from environment: %w", err)
	}
	if seeded {
		logger.Info().Msg("📝 Seeded session from environment")
	}
	return store, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
