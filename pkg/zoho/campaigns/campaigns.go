package zohocampaigns

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/natserract/zohosync/pkg/zoho"
	"go.uber.org/zap"
)

// recentCampaignsRange matches the number of campaigns the admin overview shows.
const recentCampaignsRange = 20

// GetRecentCampaigns retrieves the most recent campaigns.
func (c *Client) GetRecentCampaigns(ctx context.Context) ([]Campaign, error) {
	c.logger.Info("Getting recent campaigns")

	var resp recentCampaignsResponse
	err := c.get(ctx, "/recentcampaigns", "recentcampaigns", map[string]string{
		"fromindex": "1",
		"range":     strconv.Itoa(recentCampaignsRange),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := checkStatus("recentcampaigns", &resp.statusBody); err != nil {
		c.logger.Error("Get recent campaigns failed", zap.Error(err))
		return nil, err
	}

	c.logger.Info("Successfully retrieved recent campaigns", zap.Int("items_count", len(resp.RecentCampaigns)))
	return resp.RecentCampaigns, nil
}

// CreateCampaign creates a draft campaign addressed to one mailing list.
func (c *Client) CreateCampaign(ctx context.Context, req CreateCampaignRequest) (*CreateCampaignResponse, error) {
	if req.CampaignName == "" || req.FromEmail == "" || req.Subject == "" || req.ListKey == "" {
		return nil, fmt.Errorf("%w: campaign name, from email, subject and list key are required", zoho.ErrValidation)
	}
	listDetails, err := json.Marshal(map[string][]string{req.ListKey: {}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode list details: %w", err)
	}

	params := map[string]string{
		"campaignname": req.CampaignName,
		"from_email":   req.FromEmail,
		"subject":      req.Subject,
		"list_details": string(listDetails),
	}
	if req.ContentURL != "" {
		params["content_url"] = req.ContentURL
	}

	var resp struct {
		statusBody
		CreateCampaignResponse
	}
	if err := c.post(ctx, "/createCampaign", "createCampaign", params, &resp); err != nil {
		return nil, err
	}
	if err := checkCode("createCampaign", &resp.statusBody); err != nil {
		c.logger.Error("Create campaign failed", zap.String("campaign_name", req.CampaignName), zap.Error(err))
		return nil, err
	}

	resp.CreateCampaignResponse.Message = resp.statusBody.Message
	c.logger.Info("Created campaign",
		zap.String("campaign_name", req.CampaignName),
		zap.String("campaign_key", resp.CampaignKey))
	return &resp.CreateCampaignResponse, nil
}

// SendCampaign sends a draft campaign immediately.
func (c *Client) SendCampaign(ctx context.Context, campaignKey string) error {
	if campaignKey == "" {
		return fmt.Errorf("%w: campaign key is required", zoho.ErrValidation)
	}

	var resp statusBody
	if err := c.post(ctx, "/sendcampaign", "sendcampaign", map[string]string{
		"campaignkey": campaignKey,
	}, &resp); err != nil {
		return err
	}
	if err := checkNestedCode("sendcampaign", &resp); err != nil {
		c.logger.Error("Send campaign failed", zap.String("campaign_key", campaignKey), zap.Error(err))
		return err
	}

	c.logger.Info("Sent campaign", zap.String("campaign_key", campaignKey))
	return nil
}
