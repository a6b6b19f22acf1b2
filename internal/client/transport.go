package client

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds every single call: the original request, the refresh
// call and each replay.
const DefaultTimeout = 10 * time.Second

// HTTPClient is an interface for making HTTP requests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient creates the plain HTTP client used underneath the authenticated client.
// It is also the "bare" client for refresh calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
	}
}
