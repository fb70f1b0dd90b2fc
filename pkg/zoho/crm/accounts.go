package zohocrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	httpclient "github.com/natserract/zohosync/pkg/http"
	"github.com/natserract/zohosync/pkg/zoho"
	zohooauth "github.com/natserract/zohosync/pkg/zoho/oauth"
	"go.uber.org/zap"
)

const accountsEndpoint = "crm accounts"

// GetAccounts retrieves one page of Accounts. perPage is clamped to 1..200.
// An empty module is answered with HTTP 204 and yields an empty page.
func (c *Client) GetAccounts(ctx context.Context, page, perPage int) (*AccountsResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	c.logger.Info("Getting CRM accounts", zap.Int("page", page), zap.Int("per_page", perPage))
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		c.logger.Error("Failed to get access token", zap.Error(err))
		return nil, err
	}

	endpoint, err := httpclient.BuildURL(c.tokens.APIDomain(ctx), "/crm/v2/Accounts", map[string]string{
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
	})
	if err != nil {
		c.logger.Error("Failed to build URL", zap.Error(err))
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	headers := map[string]string{
		"Authorization": zohooauth.AuthorizationHeader(token),
	}

	resp, err := c.httpClient.Get(ctx, endpoint, headers)
	if err != nil {
		c.logger.Error("Get accounts request failed", zap.Error(err), zap.String("endpoint", endpoint))
		return nil, classifyError(err)
	}

	if resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		c.logger.Info("No CRM accounts on page", zap.Int("page", page))
		return &AccountsResponse{Info: PageInfo{Page: page, PerPage: perPage}}, nil
	}

	var accountsResp AccountsResponse
	if err := json.Unmarshal(resp.Body, &accountsResp); err != nil {
		c.logger.Error("Failed to parse accounts response", zap.Error(err))
		return nil, &zoho.TransportError{Endpoint: accountsEndpoint, Err: fmt.Errorf("failed to parse accounts response: %w", err)}
	}

	if isErrorBody(&accountsResp) {
		c.logger.Error("Get accounts failed",
			zap.String("code", accountsResp.Code),
			zap.String("message", accountsResp.Message))
		return nil, &zoho.ProviderError{
			Endpoint:   accountsEndpoint,
			StatusCode: resp.StatusCode,
			Code:       accountsResp.Code,
			Message:    accountsResp.Message,
		}
	}

	c.logger.Info("Successfully retrieved CRM accounts",
		zap.Int("page", page),
		zap.Int("items_count", len(accountsResp.Data)),
		zap.Bool("more_records", accountsResp.Info.MoreRecords))

	return &accountsResp, nil
}

// GetAllAccounts walks every page sequentially until Zoho reports no more records.
func (c *Client) GetAllAccounts(ctx context.Context) ([]Account, error) {
	var all []Account
	for page := 1; ; page++ {
		resp, err := c.GetAccounts(ctx, page, MaxPerPage)
		if err != nil {
			return all, fmt.Errorf("GetAccounts page=%d: %w", page, err)
		}
		all = append(all, resp.Data...)
		if !resp.Info.MoreRecords || len(resp.Data) == 0 {
			break
		}
	}
	c.logger.Info("Retrieved all CRM accounts", zap.Int("count", len(all)))
	return all, nil
}

// isErrorBody reports the CRM error discriminant: status "error", or a code
// other than SUCCESS.
func isErrorBody(body *AccountsResponse) bool {
	if body.Status == "error" {
		return true
	}
	return body.Code != "" && body.Code != "SUCCESS"
}

func classifyError(err error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		var body AccountsResponse
		if jsonErr := json.Unmarshal(statusErr.Body, &body); jsonErr == nil && body.Code != "" {
			return &zoho.ProviderError{
				Endpoint:   accountsEndpoint,
				StatusCode: statusErr.StatusCode,
				Code:       body.Code,
				Message:    body.Message,
			}
		}
	}
	return &zoho.TransportError{Endpoint: accountsEndpoint, Err: err}
}
