//go:generate go run github.com/golang/mock/mockgen -destination=mocks/mock_store.go -package=mocks . Store

package credentials

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyToken is returned when a caller tries to persist an empty token.
var ErrEmptyToken = errors.New("token cannot be empty")

// ErrEmptyUser is returned when a caller tries to persist an empty user record.
var ErrEmptyUser = errors.New("user cannot be empty")

// Store persists the session tokens of the signed-in user.
//
// Reads return an empty string when the token is absent. Implementations may
// fail with a storage error on any operation.
type Store interface {
	GetAccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	GetRefreshToken(ctx context.Context) (string, error)
	SetRefreshToken(ctx context.Context, token string) error
	// ClearAll removes both tokens and the user record.
	ClearAll(ctx context.Context) error
}

// UserStore keeps the user record returned at login next to the tokens.
type UserStore interface {
	// GetUser returns nil when no user is stored.
	GetUser(ctx context.Context) (*User, error)
	SetUser(ctx context.Context, user *User) error
}

// SessionStore is a Store that also keeps the user record.
type SessionStore interface {
	Store
	UserStore
}

// Credentials is the access/refresh token pair.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Complete reports whether both tokens are present.
func (c Credentials) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// User is the account record returned by login and register.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// SaveCredentials writes both tokens, access token first.
func SaveCredentials(ctx context.Context, s Store, creds Credentials) error {
	if err := s.SetAccessToken(ctx, creds.AccessToken); err != nil {
		return err
	}
	return s.SetRefreshToken(ctx, creds.RefreshToken)
}

// LoadCredentials reads both tokens.
func LoadCredentials(ctx context.Context, s Store) (Credentials, error) {
	access, err := s.GetAccessToken(ctx)
	if err != nil {
		return Credentials{}, err
	}
	refresh, err := s.GetRefreshToken(ctx)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{AccessToken: access, RefreshToken: refresh}, nil
}
