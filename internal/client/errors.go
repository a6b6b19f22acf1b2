package client

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is matched by every error caused by a terminal refresh failure.
var ErrSessionExpired = errors.New("session expired")

// RefreshError is returned to the request that triggered a failed refresh and
// to every request that waited for it.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("session expired: token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() []error {
	return []error{ErrSessionExpired, e.Err}
}
