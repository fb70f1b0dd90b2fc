package zohooauth

import "context"

// TokenSource supplies bearer tokens and the API base URL to Zoho API clients.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	APIDomain(ctx context.Context) string
}

var _ TokenSource = (*TokenManager)(nil)

// AuthorizationHeader formats token for Zoho's Authorization header.
func AuthorizationHeader(token string) string {
	return "Zoho-oauthtoken " + token
}
