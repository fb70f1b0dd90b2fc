package zohocrm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxPerPage is the largest page size the Accounts endpoint accepts.
const MaxPerPage = 200

// Scalar is a CRM field value in textual form. Zoho returns numbers, strings
// and booleans for the same kind of field depending on the layout, so values
// are normalised to their text representation. Lookup objects collapse to
// their "name".
type Scalar string

// UnmarshalJSON implements json.Unmarshaler for Scalar
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	case '{':
		var lookup struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &lookup); err != nil {
			return err
		}
		*s = Scalar(lookup.Name)
	case '[':
		*s = ""
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*s = Scalar(strconv.FormatBool(b))
	case 'n':
		*s = ""
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported CRM value %s: %w", string(data), err)
		}
		*s = Scalar(n.String())
	}
	return nil
}

// Value returns the text and whether the field was present. A nil Scalar
// (absent key or JSON null) is not present.
func (s *Scalar) Value() (string, bool) {
	if s == nil {
		return "", false
	}
	return string(*s), true
}

// Account is one Zoho CRM Accounts record, limited to the fields this
// integration maps.
type Account struct {
	ID              *Scalar `json:"id,omitempty"`
	AccountName     *Scalar `json:"Account_Name,omitempty"`
	Phone           *Scalar `json:"Phone,omitempty"`
	Fax             *Scalar `json:"Fax,omitempty"`
	Website         *Scalar `json:"Website,omitempty"`
	BillingStreet   *Scalar `json:"Billing_Street,omitempty"`
	BillingCity     *Scalar `json:"Billing_City,omitempty"`
	BillingState    *Scalar `json:"Billing_State,omitempty"`
	BillingCode     *Scalar `json:"Billing_Code,omitempty"`
	BillingCountry  *Scalar `json:"Billing_Country,omitempty"`
	ShippingStreet  *Scalar `json:"Shipping_Street,omitempty"`
	ShippingCity    *Scalar `json:"Shipping_City,omitempty"`
	ShippingState   *Scalar `json:"Shipping_State,omitempty"`
	ShippingCode    *Scalar `json:"Shipping_Code,omitempty"`
	ShippingCountry *Scalar `json:"Shipping_Country,omitempty"`
	AnnualRevenue   *Scalar `json:"Annual_Revenue,omitempty"`
	Employees       *Scalar `json:"Employees,omitempty"`
	Industry        *Scalar `json:"Industry,omitempty"`
	AccountType     *Scalar `json:"Account_Type,omitempty"`
	Ownership       *Scalar `json:"Ownership,omitempty"`
	TickerSymbol    *Scalar `json:"Ticker_Symbol,omitempty"`
	SICCode         *Scalar `json:"SIC_Code,omitempty"`
	Description     *Scalar `json:"Description,omitempty"`
	Rating          *Scalar `json:"Rating,omitempty"`
	AccountNumber   *Scalar `json:"Account_Number,omitempty"`
}

// Name returns the trimmed account name, or "" when absent or blank.
func (a *Account) Name() string {
	v, _ := a.AccountName.Value()
	return strings.TrimSpace(v)
}

// PageInfo describes the position of a page in the full result set.
type PageInfo struct {
	PerPage     int  `json:"per_page"`
	Count       int  `json:"count"`
	Page        int  `json:"page"`
	MoreRecords bool `json:"more_records"`
}

// AccountsResponse is one page of the Accounts listing.
type AccountsResponse struct {
	Data []Account `json:"data"`
	Info PageInfo  `json:"info"`

	// Set on error responses only.
	Code    string `json:"code,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}
