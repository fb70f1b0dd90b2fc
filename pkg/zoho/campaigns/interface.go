package zohocampaigns

import "context"

// CampaignsClient defines the Zoho Campaigns operations
type CampaignsClient interface {
	GetMailingLists(ctx context.Context) ([]MailingList, error)
	GetListSubscribers(ctx context.Context, listKey string) ([]Contact, error)
	GetAllContacts(ctx context.Context) ([]Contact, error)
	FindContact(ctx context.Context, listKey, email string) (*Contact, error)
	Subscribe(ctx context.Context, listKey string, info ContactInfo) error
	Unsubscribe(ctx context.Context, listKey, email string) error
	GetRecentCampaigns(ctx context.Context) ([]Campaign, error)
	CreateCampaign(ctx context.Context, req CreateCampaignRequest) (*CreateCampaignResponse, error)
	SendCampaign(ctx context.Context, campaignKey string) error
}

var _ CampaignsClient = (*Client)(nil)
