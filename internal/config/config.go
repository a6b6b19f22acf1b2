// Package config loads client configuration.
//
// Sources, highest priority first:
//  1. explicit --config path;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. environment only.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultTimeout bounds each backend call when nothing else is configured.
const DefaultTimeout = 10 * time.Second

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendKeychain = "keychain"
	BackendRedis    = "redis"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	API     APIConfig     `yaml:"api"`
	Store   StoreConfig   `yaml:"store"`
	Gateway GatewayConfig `yaml:"gateway"`
}

// APIConfig describes the expense backend.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"   env:"API_BASE_URL"   env-default:"http://localhost:3000"`
	Timeout   time.Duration `yaml:"timeout"    env:"API_TIMEOUT"    env-default:"10s"`
	UserAgent string        `yaml:"user_agent" env:"API_USER_AGENT" env-default:"expense-client"`
}

// StoreConfig selects where the session tokens live.
type StoreConfig struct {
	Backend         string `yaml:"backend"          env:"STORE_BACKEND"          env-default:"file"`
	Path            string `yaml:"path"             env:"STORE_PATH"`
	RedisURL        string `yaml:"redis_url"        env:"STORE_REDIS_URL"`
	RedisPrefix     string `yaml:"redis_prefix"     env:"STORE_REDIS_PREFIX"     env-default:"expense:session:"`
	KeychainService string `yaml:"keychain_service" env:"STORE_KEYCHAIN_SERVICE" env-default:"expense-client"`
}

// GatewayConfig is the local session gateway.
type GatewayConfig struct {
	Host     string `yaml:"host"      env:"GATEWAY_HOST"      env-default:"127.0.0.1"`
	Port     string `yaml:"port"      env:"GATEWAY_PORT"      env-default:"9880"`
	AdminKey string `yaml:"admin_key" env:"GATEWAY_ADMIN_KEY"`
}

func (g GatewayConfig) Addr() string { return net.JoinHostPort(g.Host, g.Port) }

// MustLoad panics when the configuration cannot be loaded.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return finish(&cfg)
	}

	if path != "" {
		return readFile(path)
	}

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return readFile(envPath)
	}

	if _, err := os.Stat("local.yaml"); err == nil {
		return readFile("local.yaml")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values cleanenv cannot express as tags.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}

	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendKeychain:
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return errors.New("store.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}
