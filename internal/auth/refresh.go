package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// expiryBuffer refreshes tokens slightly before Strava would reject them
const expiryBuffer = 60 * time.Second

// TokenSource wraps an oauth2 refresh with persistence.
// It refreshes tokens as needed and calls onRefresh when a new token is obtained.
type TokenSource struct {
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token) error
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewTokenSource creates a TokenSource that refreshes tokens as needed
// and calls onRefresh to persist new tokens
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error, logger *zap.Logger) *TokenSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenSource{
		config:    cfg,
		token:     token,
		onRefresh: onRefresh,
		logger:    logger,
	}
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.expired() {
		return ts.token, nil
	}

	// oauth2 only refreshes tokens it considers expired
	stale := *ts.token
	stale.AccessToken = ""
	newToken, err := ts.config.TokenSource(context.Background(), &stale).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing strava token: %w", err)
	}

	if ts.onRefresh != nil {
		if err := ts.onRefresh(newToken); err != nil {
			return nil, fmt.Errorf("saving refreshed token: %w", err)
		}
	}

	ts.logger.Info("strava token refreshed", zap.Time("expires_at", newToken.Expiry))
	ts.token = newToken
	return newToken, nil
}

// Expire marks the current token as expired so the next Token call refreshes
// it. Used after the API rejects a token that looked valid locally.
func (ts *TokenSource) Expire() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	expired := *ts.token
	expired.Expiry = time.Now().Add(-time.Second)
	ts.token = &expired
}

// IsExpired checks if the current token is expired or will expire within the buffer
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.expired()
}

func (ts *TokenSource) expired() bool {
	return time.Until(ts.token.Expiry) <= expiryBuffer
}
