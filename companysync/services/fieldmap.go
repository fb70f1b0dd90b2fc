package services

import (
	zohocrm "github.com/natserract/zohosync/pkg/zoho/crm"
)

// FieldMapping copies one CRM account field onto one company attribute.
type FieldMapping struct {
	Source      string
	Destination string

	apply func(m *Mapper, a *zohocrm.Account, attrs *CompanyAttributes)
	copy  func(dst, src *CompanyAttributes)
}

// mapField binds a source field, a transform and a destination attribute of
// the same type T.
func mapField[T any](
	source, destination string,
	get func(*zohocrm.Account) *zohocrm.Scalar,
	transform func(m *Mapper, field, raw string) (T, bool),
	field func(*CompanyAttributes) **T,
) FieldMapping {
	return FieldMapping{
		Source:      source,
		Destination: destination,
		apply: func(m *Mapper, a *zohocrm.Account, attrs *CompanyAttributes) {
			raw, ok := get(a).Value()
			if !ok {
				return
			}
			v, ok := transform(m, destination, raw)
			if !ok {
				return
			}
			*field(attrs) = &v
		},
		copy: func(dst, src *CompanyAttributes) {
			if v := *field(src); v != nil {
				c := *v
				*field(dst) = &c
			}
		},
	}
}

// fieldMappings is applied in order.
var fieldMappings = []FieldMapping{
	mapField("id", "field_zoho_id",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.ID },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.ZohoID }),
	mapField("Account_Name", "title",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.AccountName },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.Title }),
	mapField("Phone", "field_phone",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.Phone },
		(*Mapper).phone, func(c *CompanyAttributes) **string { return &c.Phone }),
	mapField("Fax", "field_fax",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.Fax },
		(*Mapper).phone, func(c *CompanyAttributes) **string { return &c.Fax }),
	mapField("Website", "field_website",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.Website },
		(*Mapper).url, func(c *CompanyAttributes) **Link { return &c.Website }),

	mapField("Billing_Street", "field_billing_street",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.BillingStreet },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.BillingStreet }),
	mapField("Billing_City", "field_billing_city",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.BillingCity },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.BillingCity }),
	mapField("Billing_State", "field_billing_state",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.BillingState },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.BillingState }),
	mapField("Billing_Code", "field_billing_code",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.BillingCode },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.BillingCode }),
	mapField("Billing_Country", "field_billing_country",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.BillingCountry },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.BillingCountry }),

	mapField("Shipping_Street", "field_shipping_street",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.ShippingStreet },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.ShippingStreet }),
	mapField("Shipping_City", "field_shipping_city",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.ShippingCity },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.ShippingCity }),
	mapField("Shipping_State", "field_shipping_state",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.ShippingState },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.ShippingState }),
	mapField("Shipping_Code", "field_shipping_code",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.ShippingCode },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.ShippingCode }),
	mapField("Shipping_Country", "field_shipping_country",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.ShippingCountry },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.ShippingCountry }),

	mapField("Annual_Revenue", "field_annual_revenue",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.AnnualRevenue },
		(*Mapper).decimal, func(c *CompanyAttributes) **float64 { return &c.AnnualRevenue }),
	mapField("Employees", "field_employees",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.Employees },
		(*Mapper).integer, func(c *CompanyAttributes) **int64 { return &c.Employees }),
	mapField("Industry", "field_industry",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.Industry },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.Industry }),
	mapField("Account_Type", "field_account_type",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.AccountType },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.AccountType }),
	mapField("Ownership", "field_ownership",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.Ownership },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.Ownership }),
	mapField("Ticker_Symbol", "field_ticker_symbol",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.TickerSymbol },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.TickerSymbol }),
	mapField("SIC_Code", "field_sic_code",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.SICCode },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.SICCode }),
	mapField("Description", "body",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.Description },
		(*Mapper).longText, func(c *CompanyAttributes) **LongText { return &c.Body }),
	mapField("Rating", "field_rating",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.Rating },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.Rating }),
	mapField("Account_Number", "field_account_number",
		func(a *zohocrm.Account) *zohocrm.Scalar { return a.AccountNumber },
		(*Mapper).text, func(c *CompanyAttributes) **string { return &c.AccountNumber }),
}

// FieldMappings returns the mapping table in application order.
func FieldMappings() []FieldMapping {
	out := make([]FieldMapping, len(fieldMappings))
	copy(out, fieldMappings)
	return out
}
