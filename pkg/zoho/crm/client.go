// Package zohocrm provides a client for the Zoho CRM REST API (v2).
//
// Only the Accounts module listing is covered; it feeds the company sync.
package zohocrm

import (
	httpclient "github.com/natserract/zohosync/pkg/http"
	zohooauth "github.com/natserract/zohosync/pkg/zoho/oauth"
	"go.uber.org/zap"
)

// Client calls the Zoho CRM API on the domain reported by the token source.
type Client struct {
	tokens     zohooauth.TokenSource
	httpClient *httpclient.Client
	logger     *zap.Logger
}

// NewClient creates a CRM client using the given HTTP client.
func NewClient(tokens zohooauth.TokenSource, httpClient *httpclient.Client, logger *zap.Logger) *Client {
	return &Client{
		tokens:     tokens,
		httpClient: httpClient,
		logger:     logger,
	}
}
