package credentials

import (
	"context"
	"sync"
)

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	creds Credentials
	user  *User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) GetAccessToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds.AccessToken, nil
}

func (m *MemoryStore) SetAccessToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	m.mu.Lock()
	m.creds.AccessToken = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetRefreshToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds.RefreshToken, nil
}

func (m *MemoryStore) SetRefreshToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	m.mu.Lock()
	m.creds.RefreshToken = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	m.creds = Credentials{}
	m.user = nil
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil, nil
	}
	u := *m.user
	return &u, nil
}

func (m *MemoryStore) SetUser(ctx context.Context, user *User) error {
	if user == nil || *user == (User{}) {
		return ErrEmptyUser
	}
	u := *user
	m.mu.Lock()
	m.user = &u
	m.mu.Unlock()
	return nil
}
