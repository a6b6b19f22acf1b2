package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dvcrn/expense-client/internal/auth"
	"github.com/dvcrn/expense-client/internal/credentials"
)

// ErrIncompleteAuth is returned when login or register succeeds without a token pair.
var ErrIncompleteAuth = errors.New("auth response is missing tokens")

type AuthService struct {
	d     Doer
	store credentials.Store
}

// Login signs in and persists the returned session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthData, error) {
	return s.authenticate(ctx, auth.LoginPath, req)
}

// Register creates an account and persists the returned session.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthData, error) {
	return s.authenticate(ctx, auth.RegisterPath, req)
}

func (s *AuthService) authenticate(ctx context.Context, path string, body any) (*AuthData, error) {
	data, err := call[*AuthData](ctx, s.d, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	if data == nil || data.AccessToken == "" || data.RefreshToken == "" {
		return nil, ErrIncompleteAuth
	}

	if err := credentials.SaveCredentials(ctx, s.store, credentials.Credentials{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
	}); err != nil {
		return nil, s.discard(ctx, fmt.Errorf("failed to save session: %w", err))
	}

	if us, ok := s.store.(credentials.UserStore); ok && data.User != nil {
		if err := us.SetUser(ctx, data.User); err != nil {
			return nil, s.discard(ctx, fmt.Errorf("failed to save user: %w", err))
		}
	}
	return data, nil
}

// discard clears a partially written session so no half of it outlives cause.
func (s *AuthService) discard(ctx context.Context, cause error) error {
	if err := s.store.ClearAll(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to clear partial session: %w", err))
	}
	return cause
}

// Logout forgets the stored session. The backend keeps no server-side session to revoke.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.store.ClearAll(ctx)
}

// IsAuthenticated reports whether an access token is stored.
func (s *AuthService) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := s.store.GetAccessToken(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// CurrentUser returns the stored user record, or nil when none is stored or
// the store does not keep users.
func (s *AuthService) CurrentUser(ctx context.Context) (*credentials.User, error) {
	us, ok := s.store.(credentials.UserStore)
	if !ok {
		return nil, nil
	}
	return us.GetUser(ctx)
}
