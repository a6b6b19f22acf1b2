package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

type fsSession struct {
	Tokens Credentials `json:"tokens"`
	User   *User       `json:"user,omitempty"`
}

// FSStore keeps the session in a JSON file readable only by the owner.
type FSStore struct {
	Path string

	mu sync.Mutex
}

func NewFSStore(path string) *FSStore {
	return &FSStore{Path: path}
}

func (f *FSStore) GetAccessToken(ctx context.Context) (string, error) {
	s, err := f.read()
	if err != nil {
		return "", err
	}
	return s.Tokens.AccessToken, nil
}

func (f *FSStore) SetAccessToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return f.update(func(s *fsSession) { s.Tokens.AccessToken = token })
}

func (f *FSStore) GetRefreshToken(ctx context.Context) (string, error) {
	s, err := f.read()
	if err != nil {
		return "", err
	}
	return s.Tokens.RefreshToken, nil
}

func (f *FSStore) SetRefreshToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return f.update(func(s *fsSession) { s.Tokens.RefreshToken = token })
}

// ClearAll removes the session file.
func (f *FSStore) ClearAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (f *FSStore) GetUser(ctx context.Context) (*User, error) {
	s, err := f.read()
	if err != nil {
		return nil, err
	}
	return s.User, nil
}

func (f *FSStore) SetUser(ctx context.Context, user *User) error {
	if user == nil || *user == (User{}) {
		return ErrEmptyUser
	}
	u := *user
	return f.update(func(s *fsSession) { s.User = &u })
}

func (f *FSStore) read() (*fsSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readLocked()
}

func (f *FSStore) readLocked() (*fsSession, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return &fsSession{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s fsSession
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return &s, nil
}

func (f *FSStore) update(mutate func(s *fsSession)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.readLocked()
	if err != nil {
		return err
	}
	mutate(s)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := EnsureParentDir(f.Path); err != nil {
		return err
	}
	if err := os.WriteFile(f.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
