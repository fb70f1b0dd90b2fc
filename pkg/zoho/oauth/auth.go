package zohooauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/natserract/zohosync/pkg/config"
	httpclient "github.com/natserract/zohosync/pkg/http"
	"github.com/natserract/zohosync/pkg/zoho"
	"go.uber.org/zap"
)

// BuildAuthorizationURL returns the Zoho consent URL, or "" when clientID or
// redirectURI is empty. Scopes are comma joined as Zoho expects.
func BuildAuthorizationURL(accountsURL, clientID, redirectURI string, scopes []string) string {
	if clientID == "" || redirectURI == "" {
		return ""
	}

	params := url.Values{
		"scope":         {strings.Join(scopes, ",")},
		"client_id":     {clientID},
		"response_type": {"code"},
		"access_type":   {"offline"},
		"redirect_uri":  {redirectURI},
		"prompt":        {"consent"},
	}
	return strings.TrimSuffix(accountsURL, "/") + "/oauth/v2/auth?" + params.Encode()
}

// AuthorizationURL builds the consent URL from the configured client settings.
func (m *TokenManager) AuthorizationURL() string {
	return BuildAuthorizationURL(m.config.AccountsURL, m.config.ClientID, m.config.RedirectURI, m.config.Scopes)
}

// ExchangeCode trades an authorization code for tokens and persists them,
// replacing any previous credential. Nothing is persisted on failure.
func (m *TokenManager) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	if err := m.config.ValidateCredentials(); err != nil {
		m.logger.Error("Cannot exchange authorization code", zap.Error(err))
		return nil, err
	}
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code is required", zoho.ErrValidation)
	}

	m.logger.Info("Exchanging authorization code for tokens")
	tokenResp, err := m.requestToken(ctx, url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {m.config.ClientID},
		"client_secret": {m.config.ClientSecret},
		"redirect_uri":  {m.config.RedirectURI},
		"code":          {code},
	})
	if err != nil {
		m.logger.Error("OAuth token exchange failed", zap.Error(err))
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	if err := m.saveTokens(ctx, tokenResp); err != nil {
		return nil, err
	}

	m.logger.Info("Successfully obtained access token from Zoho",
		zap.Int64("expires_in", tokenResp.ExpiresIn),
		zap.String("api_domain", tokenResp.APIDomain))
	return tokenResp, nil
}

// RefreshAccessToken obtains a new access token with the stored refresh token.
// The refresh token is kept unless Zoho issues a new one. A failed refresh
// leaves the stored credential untouched and is not retried.
func (m *TokenManager) RefreshAccessToken(ctx context.Context) (*TokenResponse, error) {
	refreshToken, _, err := m.store.Get(ctx, KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh token: %w", err)
	}
	if refreshToken == "" {
		m.logger.Error("No refresh token available")
		return nil, zoho.ErrMissingRefreshToken
	}
	if m.config.ClientID == "" || m.config.ClientSecret == "" {
		m.logger.Error("Cannot refresh access token without client credentials")
		return nil, fmt.Errorf("%w: ZOHO_CLIENT_ID and ZOHO_CLIENT_SECRET are required", zoho.ErrNotConfigured)
	}

	m.logger.Info("Refreshing access token")
	tokenResp, err := m.requestToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {m.config.ClientID},
		"client_secret": {m.config.ClientSecret},
		"refresh_token": {refreshToken},
	})
	if err != nil {
		m.logger.Error("Token refresh failed", zap.Error(err))
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	if err := m.saveTokens(ctx, tokenResp); err != nil {
		return nil, err
	}

	m.logger.Info("Successfully refreshed access token", zap.Int64("expires_in", tokenResp.ExpiresIn))
	return tokenResp, nil
}

// AccessToken returns a usable access token, refreshing it first when it is
// missing or expired. An expired token is never returned.
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	cred, err := m.Credential(ctx)
	if err != nil {
		return "", err
	}

	now := m.now()
	if !cred.Expired(now) {
		m.logger.Debug("Using stored access token", zap.Duration("remaining", cred.ExpiresAt.Sub(now)))
		return cred.AccessToken, nil
	}

	m.logger.Info("Access token expired or not available, refreshing")
	tokenResp, err := m.RefreshAccessToken(ctx)
	if err != nil {
		return "", err
	}
	return tokenResp.AccessToken, nil
}

// IsConnected reports whether an access token is stored. The token may be
// expired; use AccessToken to obtain a usable value.
func (m *TokenManager) IsConnected(ctx context.Context) bool {
	token, _, err := m.store.Get(ctx, KeyAccessToken)
	if err != nil {
		m.logger.Warn("Failed to read access token", zap.Error(err))
		return false
	}
	return token != ""
}

// APIDomain returns the stored API base URL or the configured default.
func (m *TokenManager) APIDomain(ctx context.Context) string {
	domain, _, err := m.store.Get(ctx, KeyAPIDomain)
	if err != nil {
		m.logger.Warn("Failed to read API domain", zap.Error(err))
	}
	if domain != "" {
		return domain
	}
	if m.config.APIDomain != "" {
		return m.config.APIDomain
	}
	return config.DefaultAPIDomain
}

// Credential reads the persisted credential.
func (m *TokenManager) Credential(ctx context.Context) (*Credential, error) {
	values := make(map[string]string, 4)
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyExpires, KeyAPIDomain} {
		v, _, err := m.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		values[key] = v
	}

	cred := &Credential{
		AccessToken:  values[KeyAccessToken],
		RefreshToken: values[KeyRefreshToken],
		APIDomain:    values[KeyAPIDomain],
	}
	if raw := values[KeyExpires]; raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			m.logger.Warn("Ignoring malformed token expiry", zap.String("value", raw))
		} else {
			cred.ExpiresAt = time.Unix(secs, 0)
		}
	}
	return cred, nil
}

func (m *TokenManager) tokenURL() string {
	return strings.TrimSuffix(m.config.AccountsURL, "/") + "/oauth/v2/token"
}

// requestToken posts a grant to the token endpoint. The result always carries
// an access token.
func (m *TokenManager) requestToken(ctx context.Context, form url.Values) (*TokenResponse, error) {
	endpoint := m.tokenURL()
	resp, err := m.httpClient.PostForm(ctx, endpoint, nil, form)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(resp.Body, &tokenResp); err != nil {
		return nil, &zoho.TransportError{Endpoint: "token", Err: fmt.Errorf("failed to parse token response: %w", err)}
	}

	if tokenResp.AccessToken == "" {
		code := tokenResp.Error
		if code == "" {
			code = "missing_access_token"
		}
		m.logger.Error("No access_token in token response", zap.String("response", string(resp.Body)))
		return nil, &zoho.ProviderError{
			Endpoint:   "token",
			StatusCode: resp.StatusCode,
			Code:       code,
			Message:    tokenResp.ErrorDescription,
		}
	}
	return &tokenResp, nil
}

// classifyTokenError maps HTTP client failures onto the zoho error taxonomy.
func classifyTokenError(err error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		var body TokenResponse
		if jsonErr := json.Unmarshal(statusErr.Body, &body); jsonErr == nil && body.Error != "" {
			return &zoho.ProviderError{
				Endpoint:   "token",
				StatusCode: statusErr.StatusCode,
				Code:       body.Error,
				Message:    body.ErrorDescription,
			}
		}
	}
	return &zoho.TransportError{Endpoint: "token", Err: err}
}

func (m *TokenManager) saveTokens(ctx context.Context, tokenResp *TokenResponse) error {
	expiresIn := tokenResp.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}
	expiresAt := m.now().Add(time.Duration(expiresIn) * time.Second)

	writes := []struct{ key, value string }{
		{KeyAccessToken, tokenResp.AccessToken},
		{KeyExpires, strconv.FormatInt(expiresAt.Unix(), 10)},
	}
	if tokenResp.RefreshToken != "" {
		writes = append(writes, struct{ key, value string }{KeyRefreshToken, tokenResp.RefreshToken})
	}
	if tokenResp.APIDomain != "" {
		writes = append(writes, struct{ key, value string }{KeyAPIDomain, tokenResp.APIDomain})
	}

	for _, w := range writes {
		if err := m.store.Set(ctx, w.key, w.value); err != nil {
			m.logger.Error("Failed to persist token state", zap.String("key", w.key), zap.Error(err))
			return fmt.Errorf("failed to persist %s: %w", w.key, err)
		}
	}

	m.logger.Debug("Persisted token state", zap.Time("expires_at", expiresAt))
	return nil
}
