package credentials

import (
	"context"
	"fmt"
	"os"
)

const (
	envAccessToken  = "EXPENSE_ACCESS_TOKEN"
	envRefreshToken = "EXPENSE_REFRESH_TOKEN"
)

// CredentialsFromEnv reads a token pair from EXPENSE_ACCESS_TOKEN and
// EXPENSE_REFRESH_TOKEN. ok is false unless both are set.
func CredentialsFromEnv() (Credentials, bool) {
	creds := Credentials{
		AccessToken:  os.Getenv(envAccessToken),
		RefreshToken: os.Getenv(envRefreshToken),
	}
	return creds, creds.Complete()
}

// SeedFromEnv writes the environment token pair into s, if one is set.
func SeedFromEnv(ctx context.Context, s Store) (bool, error) {
	creds, ok := CredentialsFromEnv()
	if !ok {
		return false, nil
	}
	if err := SaveCredentials(ctx, s, creds); err != nil {
		return false, fmt.Errorf("failed to seed credentials from environment: %w", err)
	}
	return true, nil
}
