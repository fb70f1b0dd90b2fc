package zohocrm

import "context"

// CRMClient defines the Zoho CRM operations used by the company sync
type CRMClient interface {
	// GetAccounts retrieves one page of Accounts records
	GetAccounts(ctx context.Context, page, perPage int) (*AccountsResponse, error)

	// GetAllAccounts retrieves every Accounts record, page by page
	GetAllAccounts(ctx context.Context) ([]Account, error)
}

var _ CRMClient = (*Client)(nil)
