// Package zohooauth manages the OAuth2 credential of a Zoho connection.
//
// Zoho uses the authorization code grant with offline access: the site owner
// approves the requested scopes once, the redirect callback exchanges the
// returned code for an access token (valid for one hour) and a long-lived
// refresh token, and every later API call silently refreshes the access token
// once it is within a minute of expiry.
//
// The credential is persisted through a state.Store so it survives restarts.
// Concurrent refreshes from separate processes are not coordinated; the last
// writer wins.
package zohooauth

import (
	"time"

	"github.com/natserract/zohosync/pkg/config"
	httpclient "github.com/natserract/zohosync/pkg/http"
	"github.com/natserract/zohosync/pkg/state"
	"go.uber.org/zap"
)

// TokenManager owns the OAuth2 credential lifecycle for one Zoho connection.
type TokenManager struct {
	config     *config.Config
	httpClient *httpclient.Client
	store      state.Store
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a TokenManager.
type Option func(*TokenManager)

// WithClock replaces time.Now, used for expiry decisions and timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) { m.now = now }
}

// WithHTTPClient replaces the HTTP client used for token requests.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(m *TokenManager) { m.httpClient = c }
}

// NewTokenManager creates a TokenManager persisting into store.
func NewTokenManager(cfg *config.Config, store state.Store, logger *zap.Logger, opts ...Option) *TokenManager {
	m := &TokenManager{
		config: cfg,
		httpClient: httpclient.NewClientWithOptions(logger, httpclient.ClientOptions{
			MaxTries: 1,
		}),
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
