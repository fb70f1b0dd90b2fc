package zohooauth

import "time"

// Persisted state keys. Each key is read and written independently.
const (
	KeyAccessToken  = "zoho_custom_campaign.access_token"
	KeyRefreshToken = "zoho_custom_campaign.refresh_token"
	KeyExpires      = "zoho_custom_campaign.expires"
	KeyAPIDomain    = "zoho_custom_campaign.api_domain"
)

const (
	// expiryMargin treats a token as expired this long before its real expiry
	// so it cannot lapse mid-request.
	expiryMargin = 60 * time.Second
	// defaultExpiresIn applies when a token response omits expires_in.
	defaultExpiresIn = 3600
)

// TokenResponse is the raw payload of the Zoho token endpoint.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	APIDomain    string `json:"api_domain,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`

	// Zoho reports some failures with HTTP 200 and these fields set.
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Credential is the persisted OAuth2 state.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	APIDomain    string
}

// Expired reports whether the access token must be refreshed before use at now.
// A credential without a known expiry is expired.
func (c *Credential) Expired(now time.Time) bool {
	if c.AccessToken == "" || c.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(c.ExpiresAt.Add(-expiryMargin))
}
