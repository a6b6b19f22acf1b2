package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"
)

const keychainAccount = "expense-client"

// commandRunner runs an external command and returns its stdout.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// KeychainStore keeps the session as one generic password in the macOS keychain.
type KeychainStore struct {
	service string
	run     commandRunner
	logger  *zerolog.Logger

	mu sync.Mutex
}

// NewKeychainStore creates a keychain-backed store for the given service name
func NewKeychainStore(service string, logger *zerolog.Logger) *KeychainStore {
	return &KeychainStore{
		service: service,
		run:     execRunner,
		logger:  logger,
	}
}

func (k *KeychainStore) GetAccessToken(ctx context.Context) (string, error) {
	s, err := k.read(ctx)
	if err != nil {
		return "", err
	}
	return s.Tokens.AccessToken, nil
}

func (k *KeychainStore) SetAccessToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return k.update(ctx, func(s *fsSession) { s.Tokens.AccessToken = token })
}

func (k *KeychainStore) GetRefreshToken(ctx context.Context) (string, error) {
	s, err := k.read(ctx)
	if err != nil {
		return "", err
	}
	return s.Tokens.RefreshToken, nil
}

func (k *KeychainStore) SetRefreshToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return k.update(ctx, func(s *fsSession) { s.Tokens.RefreshToken = token })
}

func (k *KeychainStore) ClearAll(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	// A missing item is not an error here.
	if _, err := k.run(ctx, "security", "delete-generic-password", "-s", k.service); err != nil && k.logger != nil {
		k.logger.Debug().Err(err).Str("service", k.service).Msg("Keychain item not deleted")
	}
	return nil
}

func (k *KeychainStore) GetUser(ctx context.Context) (*User, error) {
	s, err := k.read(ctx)
	if err != nil {
		return nil, err
	}
	return s.User, nil
}

func (k *KeychainStore) SetUser(ctx context.Context, user *User) error {
	if user == nil || *user == (User{}) {
		return ErrEmptyUser
	}
	u := *user
	return k.update(ctx, func(s *fsSession) { s.User = &u })
}

func (k *KeychainStore) read(ctx context.Context) (*fsSession, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.readLocked(ctx)
}

func (k *KeychainStore) readLocked(ctx context.Context) (*fsSession, error) {
	output, err := k.run(ctx, "security", "find-generic-password", "-s", k.service, "-w")
	if err != nil {
		// security exits non-zero when the item does not exist yet.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &fsSession{}, nil
		}
		return nil, fmt.Errorf("failed to retrieve session from Keychain: %w", err)
	}

	var s fsSession
	if err := json.Unmarshal(output, &s); err != nil {
		return nil, fmt.Errorf("failed to parse JSON from keychain: %w", err)
	}
	return &s, nil
}

func (k *KeychainStore) update(ctx context.Context, mutate func(s *fsSession)) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	s, err := k.readLocked(ctx)
	if err != nil {
		return err
	}
	mutate(s)

	updatedJSON, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if _, err := k.run(ctx, "security", "add-generic-password", "-s", k.service, "-a", keychainAccount, "-w", string(updatedJSON), "-U"); err != nil {
		return fmt.Errorf("failed to update keychain: %w", err)
	}
	return nil
}
