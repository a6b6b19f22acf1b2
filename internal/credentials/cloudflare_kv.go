//go:build js && wasm

package credentials

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/syumai/workers/cloudflare/kv"
)

const kvSessionKey = "expense_session"

// CloudflareKVStore keeps the session in Cloudflare KV
type CloudflareKVStore struct {
	kvStore *kv.Namespace
}

// NewCloudflareKVStore binds to the KV namespace configured in wrangler.toml
func NewCloudflareKVStore(binding string) (*CloudflareKVStore, error) {
	kvStore, err := kv.NewNamespace(binding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize KV namespace: %w", err)
	}
	return &CloudflareKVStore{kvStore: kvStore}, nil
}

func (c *CloudflareKVStore) GetAccessToken(ctx context.Context) (string, error) {
	s, err := c.read()
	if err != nil {
		return "", err
	}
	return s.Tokens.AccessToken, nil
}

func (c *CloudflareKVStore) SetAccessToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return c.update(func(s *fsSession) { s.Tokens.AccessToken = token })
}

func (c *CloudflareKVStore) GetRefreshToken(ctx context.Context) (string, error) {
	s, err := c.read()
	if err != nil {
		return "", err
	}
	return s.Tokens.RefreshToken, nil
}

func (c *CloudflareKVStore) SetRefreshToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return c.update(func(s *fsSession) { s.Tokens.RefreshToken = token })
}

func (c *CloudflareKVStore) ClearAll(ctx context.Context) error {
	if err := c.kvStore.Delete(kvSessionKey); err != nil {
		return fmt.Errorf("failed to delete session from KV: %w", err)
	}
	return nil
}

func (c *CloudflareKVStore) GetUser(ctx context.Context) (*User, error) {
	s, err := c.read()
	if err != nil {
		return nil, err
	}
	return s.User, nil
}

func (c *CloudflareKVStore) SetUser(ctx context.Context, user *User) error {
	if user == nil || *user == (User{}) {
		return ErrEmptyUser
	}
	u := *user
	return c.update(func(s *fsSession) { s.User = &u })
}

func (c *CloudflareKVStore) read() (*fsSession, error) {
	raw, err := c.kvStore.GetString(kvSessionKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get session from KV: %w", err)
	}
	if raw == "" {
		return &fsSession{}, nil
	}

	var s fsSession
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to parse session JSON: %w", err)
	}
	return &s, nil
}

func (c *CloudflareKVStore) update(mutate func(s *fsSession)) error {
	s, err := c.read()
	if err != nil {
		return err
	}
	mutate(s)

	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := c.kvStore.PutString(kvSessionKey, string(b), nil); err != nil {
		return fmt.Errorf("failed to store session in KV: %w", err)
	}
	return nil
}
