// Package zohocampaigns provides a client for the Zoho Campaigns API (v1.1).
//
// Zoho Campaigns is Zoho's email marketing service: mailing lists hold
// subscribed contacts, and campaigns are sent to one or more lists. The
// client covers the endpoints needed to browse and edit list contacts and to
// list, create and send campaigns.
//
// Every request carries resfmt=JSON. The API signals failure inside the JSON
// body rather than through HTTP status, and the discriminant differs per
// endpoint; each method checks the one its endpoint uses.
package zohocampaigns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/natserract/zohosync/pkg/config"
	httpclient "github.com/natserract/zohosync/pkg/http"
	"github.com/natserract/zohosync/pkg/zoho"
	zohooauth "github.com/natserract/zohosync/pkg/zoho/oauth"
	"go.uber.org/zap"
)

// Client calls the Zoho Campaigns API.
type Client struct {
	config     *config.Config
	tokens     zohooauth.TokenSource
	httpClient *httpclient.Client
	logger     *zap.Logger
}

// NewClient creates a Campaigns client rooted at cfg.CampaignsURL.
func NewClient(cfg *config.Config, tokens zohooauth.TokenSource, httpClient *httpclient.Client, logger *zap.Logger) *Client {
	return &Client{
		config:     cfg,
		tokens:     tokens,
		httpClient: httpClient,
		logger:     logger,
	}
}

// call performs an authenticated request and decodes the JSON reply into out.
func (c *Client) call(ctx context.Context, method, path, endpoint string, params map[string]string, out any) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		c.logger.Error("Failed to get access token", zap.Error(err))
		return err
	}

	query := map[string]string{"resfmt": "JSON"}
	for k, v := range params {
		query[k] = v
	}
	requestURL, err := httpclient.BuildURL(c.config.CampaignsURL, path, query)
	if err != nil {
		c.logger.Error("Failed to build URL", zap.Error(err))
		return fmt.Errorf("failed to build URL: %w", err)
	}

	resp, err := c.httpClient.Do(httpclient.RequestOptions{
		Method:  method,
		URL:     requestURL,
		Context: ctx,
		Headers: map[string]string{
			"Authorization": zohooauth.AuthorizationHeader(token),
		},
	})
	if err != nil {
		c.logger.Error("Campaigns request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return classifyError(endpoint, err)
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		c.logger.Error("Failed to parse campaigns response", zap.String("endpoint", endpoint), zap.Error(err))
		return &zoho.TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path, endpoint string, params map[string]string, out any) error {
	return c.call(ctx, http.MethodGet, path, endpoint, params, out)
}

func (c *Client) post(ctx context.Context, path, endpoint string, params map[string]string, out any) error {
	return c.call(ctx, http.MethodPost, path, endpoint, params, out)
}

// checkStatus is the discriminant of list, subscriber and recent campaign endpoints.
func checkStatus(endpoint string, body *statusBody) error {
	if body.Status == "error" {
		return &zoho.ProviderError{Endpoint: endpoint, Code: string(body.Code), Message: body.Message}
	}
	return nil
}

// checkCode is the discriminant of createCampaign: a top-level code of 200.
func checkCode(endpoint string, body *statusBody) error {
	if body.Code != "200" {
		return &zoho.ProviderError{Endpoint: endpoint, Code: string(body.Code), Message: body.Message}
	}
	return nil
}

// checkNestedCode is the discriminant of sendcampaign: the nested
// response.code when present, the top-level code otherwise.
func checkNestedCode(endpoint string, body *statusBody) error {
	if body.Response != nil && body.Response.Code != "" {
		if body.Response.Code != "200" {
			return &zoho.ProviderError{Endpoint: endpoint, Code: string(body.Response.Code), Message: body.Response.Message}
		}
		return nil
	}
	return checkCode(endpoint, body)
}

func classifyError(endpoint string, err error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		var body statusBody
		if jsonErr := json.Unmarshal(statusErr.Body, &body); jsonErr == nil && (body.Code != "" || body.Message != "") {
			return &zoho.ProviderError{
				Endpoint:   endpoint,
				StatusCode: statusErr.StatusCode,
				Code:       string(body.Code),
				Message:    body.Message,
			}
		}
	}
	return &zoho.TransportError{Endpoint: endpoint, Err: err}
}
