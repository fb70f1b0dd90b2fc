package services

import (
	"time"

	"github.com/google/uuid"
)

// Fixed attributes every synced company carries.
const (
	CompanyType    = "company"
	DefaultOwnerID = int64(1)
)

// BasicHTML is the text format applied to long text fields.
const BasicHTML = "basic_html"

// Link is a URL attribute.
type Link struct {
	URI string `json:"uri"`
}

// LongText is a formatted text attribute.
type LongText struct {
	Value  string `json:"value"`
	Format string `json:"format"`
}

// CompanyAttributes are the values a sync writes onto a company. A nil field
// was not produced by the mapping and is left untouched on update.
type CompanyAttributes struct {
	Type      string `json:"type"`
	Published bool   `json:"status"`
	OwnerID   int64  `json:"uid"`

	ZohoID          *string   `json:"field_zoho_id,omitempty"`
	Title           *string   `json:"title,omitempty"`
	Phone           *string   `json:"field_phone,omitempty"`
	Fax             *string   `json:"field_fax,omitempty"`
	Website         *Link     `json:"field_website,omitempty"`
	BillingStreet   *string   `json:"field_billing_street,omitempty"`
	BillingCity     *string   `json:"field_billing_city,omitempty"`
	BillingState    *string   `json:"field_billing_state,omitempty"`
	BillingCode     *string   `json:"field_billing_code,omitempty"`
	BillingCountry  *string   `json:"field_billing_country,omitempty"`
	ShippingStreet  *string   `json:"field_shipping_street,omitempty"`
	ShippingCity    *string   `json:"field_shipping_city,omitempty"`
	ShippingState   *string   `json:"field_shipping_state,omitempty"`
	ShippingCode    *string   `json:"field_shipping_code,omitempty"`
	ShippingCountry *string   `json:"field_shipping_country,omitempty"`
	AnnualRevenue   *float64  `json:"field_annual_revenue,omitempty"`
	Employees       *int64    `json:"field_employees,omitempty"`
	Industry        *string   `json:"field_industry,omitempty"`
	AccountType     *string   `json:"field_account_type,omitempty"`
	Ownership       *string   `json:"field_ownership,omitempty"`
	TickerSymbol    *string   `json:"field_ticker_symbol,omitempty"`
	SICCode         *string   `json:"field_sic_code,omitempty"`
	Body            *LongText `json:"body,omitempty"`
	Rating          *string   `json:"field_rating,omitempty"`
	AccountNumber   *string   `json:"field_account_number,omitempty"`
}

// Company is a locally stored company record.
type Company struct {
	ID uuid.UUID `json:"id"`
	CompanyAttributes
	CreatedAt time.Time `json:"created_at"`
	ChangedAt time.Time `json:"changed_at"`
}

// NewCompany creates an unsaved company from mapped attributes.
func NewCompany(attrs CompanyAttributes, now time.Time) *Company {
	return &Company{
		ID:                uuid.New(),
		CompanyAttributes: attrs,
		CreatedAt:         now,
		ChangedAt:         now,
	}
}

// Apply overwrites the company with every attribute present in attrs. Type
// and owner are set at creation and never changed by a sync.
func (c *Company) Apply(attrs CompanyAttributes, now time.Time) {
	c.Published = attrs.Published
	for _, m := range fieldMappings {
		m.copy(&c.CompanyAttributes, &attrs)
	}
	c.ChangedAt = now
}

// DisplayTitle returns the title, or "" when unset.
func (c *Company) DisplayTitle() string {
	if c.Title == nil {
		return ""
	}
	return *c.Title
}
