package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
	RefreshPath  = "/auth/refresh"
)

// Paths lists the endpoints that must never carry a bearer token nor trigger a refresh.
var Paths = []string{LoginPath, RegisterPath, RefreshPath}

// ErrNoRefreshToken means there is nothing to exchange for a new access token.
var ErrNoRefreshToken = errors.New("no refresh token available")

// RefreshStatusError is returned when the refresh endpoint answers with a non-2xx status.
type RefreshStatusError struct {
	StatusCode int
	Body       string
}

func (e *RefreshStatusError) Error() string {
	return fmt.Sprintf("token refresh failed with status %d: %s", e.StatusCode, e.Body)
}

// HTTPClient is an interface for making HTTP requests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Refresher exchanges a refresh token for a new token pair. Its HTTP client
// must not be the authenticated client, so the refresh call is never intercepted.
type Refresher struct {
	url        string
	httpClient HTTPClient
}

func NewRefresher(baseURL string, httpClient HTTPClient) *Refresher {
	return &Refresher{
		url:        strings.TrimRight(baseURL, "/") + RefreshPath,
		httpClient: httpClient,
	}
}

// Refresh performs the token refresh and returns the new pair as a bearer token.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	jsonData, err := json.Marshal(RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &RefreshStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var refreshResp RefreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&refreshResp); err != nil {
		return nil, fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if refreshResp.Data == nil || refreshResp.Data.AccessToken == "" || refreshResp.Data.RefreshToken == "" {
		return nil, errors.New("malformed refresh response: missing tokens")
	}

	return &oauth2.Token{
		AccessToken:  refreshResp.Data.AccessToken,
		RefreshToken: refreshResp.Data.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}

// IsAuthPath reports whether path targets one of the given auth endpoints.
func IsAuthPath(path string, authPaths []string) bool {
	for _, p := range authPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}
