package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/dvcrn/expense-client/internal/credentials"
	"github.com/dvcrn/expense-client/internal/logger"
	"github.com/dvcrn/expense-client/internal/metrics"
)

type retriedKey struct{}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

// IsRetried reports whether ctx belongs to a replayed request.
func IsRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

// refreshResult settles one queued request: either a new access token or the
// failure of the refresh it waited for.
type refreshResult struct {
	token string
	err   error
}

// handleResponse decides whether resp is final. A 401 on a regular request
// that has not been replayed yet starts or joins a refresh and returns the
// response of the replay.
func (c *Client) handleResponse(attempt *http.Request, body []byte, sentToken string, resp *http.Response) (*http.Response, error) {
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	log := c.requestLogger(attempt)
	if c.isAuthEndpoint(attempt) {
		log.Debug().Msg("401 from auth endpoint, passing through")
		return resp, nil
	}
	if IsRetried(attempt.Context()) {
		log.Error().Msg("Still received 401 after token refresh, giving up")
		return resp, nil
	}
	drainAndClose(resp)

	token, err := c.awaitToken(attempt.Context(), sentToken, log)
	if err != nil {
		return nil, err
	}
	return c.replay(attempt, body, token, log)
}

// awaitToken returns an access token to replay with. Only the first caller
// while idle performs the refresh; everyone arriving while it runs is queued
// and settled with its outcome.
func (c *Client) awaitToken(ctx context.Context, sentToken string, log zerolog.Logger) (string, error) {
	c.mu.Lock()
	if c.refreshing {
		ch := make(chan refreshResult, 1)
		c.waiters = append(c.waiters, ch)
		queued := len(c.waiters)
		c.mu.Unlock()

		c.metrics.QueuedRequests.Inc()
		log.Debug().Int("queued", queued).Msg("⏳ Refresh in progress, queueing request")

		// Queued requests are not withdrawn; the refresh call's timeout bounds the wait.
		res := <-ch
		return res.token, res.err
	}

	c.refreshing = true
	c.mu.Unlock()

	// A request that left before the last refresh or login still carries an
	// old token; it gets the stored one without another refresh call.
	if current := c.currentToken(ctx, sentToken, log); current != "" {
		c.succeed(current)
		log.Debug().Msg("Request used a token that was already replaced, replaying with the stored one")
		return current, nil
	}

	log.Warn().Msg("🔄 Received 401 Unauthorized, attempting token refresh...")
	token, err := c.refresh(ctx, log)
	if err != nil {
		c.fail(ctx, err, log)
		return "", &RefreshError{Err: err}
	}
	c.succeed(token.AccessToken)
	log.Info().
		Str("access_token", logger.TokenPreview(token.AccessToken)).
		Msg("✅ Successfully refreshed credentials, retrying request...")
	return token.AccessToken, nil
}

// currentToken returns the stored access token when it differs from the one
// the failed request carried, or "" when a refresh is needed.
func (c *Client) currentToken(ctx context.Context, sentToken string, log zerolog.Logger) string {
	if sentToken == "" {
		return ""
	}
	token, err := c.store.GetAccessToken(context.WithoutCancel(ctx))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read access token, refreshing")
		return ""
	}
	if token == sentToken {
		return ""
	}
	return token
}

// refresh exchanges the stored refresh token and persists the new pair. It is
// detached from the caller's cancellation so an abandoned request cannot end
// the session; the bare client's timeout still bounds it.
func (c *Client) refresh(ctx context.Context, log zerolog.Logger) (*oauth2.Token, error) {
	ctx = context.WithoutCancel(ctx)

	refreshToken, err := c.store.GetRefreshToken(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read refresh token")
		refreshToken = ""
	}

	token, err := c.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		c.metrics.Refreshes.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, err
	}
	c.metrics.Refreshes.WithLabelValues(metrics.ResultSuccess).Inc()

	if err := credentials.SaveCredentials(ctx, c.store, credentials.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}
	return token, nil
}

func (c *Client) succeed(accessToken string) {
	c.mu.Lock()
	c.refreshing = false
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- refreshResult{token: accessToken}
	}
}

// fail clears the session before releasing the queue, so no settled request
// can observe the revoked tokens, then fires the notifier once.
func (c *Client) fail(ctx context.Context, cause error, log zerolog.Logger) {
	ctx = context.WithoutCancel(ctx)

	if err := c.store.ClearAll(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to clear stored session")
	}

	c.mu.Lock()
	c.refreshing = false
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	err := &RefreshError{Err: cause}
	for _, ch := range waiters {
		ch <- refreshResult{err: err}
	}

	c.metrics.SessionExpired.Inc()
	event := log.Error().Err(cause).Int("waiters", len(waiters))
	if errors.Is(cause, context.DeadlineExceeded) {
		event = event.Bool("timeout", true)
	}
	event.Msg("❌ Failed to refresh credentials, session expired")

	if c.notifier != nil && !c.notifier.Notify() {
		log.Debug().Msg("No session-expired handler registered")
	}
}

// replay resends the request once with token. The replay is marked so a
// second 401 is returned to the caller as is.
func (c *Client) replay(attempt *http.Request, body []byte, token string, log zerolog.Logger) (*http.Response, error) {
	r := cloneRequest(markRetried(attempt.Context()), attempt, body)
	setBearer(r, token)
	c.metrics.Replays.Inc()

	resp, err := c.httpClient.Do(r)
	if err != nil {
		log.Error().Err(err).Msg("Replay after token refresh failed")
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		log.Error().Msg("Still received 401 after token refresh, giving up")
	}
	return resp, nil
}

// waiting returns the number of queued requests.
func (c *Client) waiting() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
