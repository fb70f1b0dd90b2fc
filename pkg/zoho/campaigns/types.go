package zohocampaigns

import (
	"bytes"
	"encoding/json"
	"strings"
)

// pageRange is the page size used for list and subscriber listings.
const pageRange = 100

// flexString accepts a JSON string or number. Zoho returns codes as either.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

// MailingList is one entry of getmailinglists.
type MailingList struct {
	ListKey       string     `json:"listkey"`
	ListName      string     `json:"listname"`
	ContactsCount flexString `json:"noofcontacts"`
	CreatedTime   string     `json:"created_time_gmt"`
	LockStatus    string     `json:"lockstatus"`
}

type mailingListsResponse struct {
	statusBody
	ListOfDetails []MailingList `json:"list_of_details"`
}

// Contact is a list subscriber. Zoho returns the same attribute under
// different keys depending on the list layout ("Contact Email" or
// "contact_email"); Fields keeps every non-empty attribute as returned.
type Contact struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	ListKey   string
	ListName  string
	Fields    map[string]string
}

// UnmarshalJSON implements json.Unmarshaler for Contact
func (c *Contact) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Fields = make(map[string]string, len(raw))
	for key, value := range raw {
		var s flexString
		if err := json.Unmarshal(value, &s); err != nil {
			continue
		}
		if s != "" {
			c.Fields[key] = string(s)
		}
	}

	c.Email = c.pick("Contact Email", "contact_email")
	c.FirstName = c.pick("First Name", "firstname")
	c.LastName = c.pick("Last Name", "lastname")
	c.Phone = c.pick("Phone", "phone")
	c.ListKey = c.pick("list_key", "listkey")
	c.ListName = c.pick("list_name", "listname")
	return nil
}

func (c *Contact) pick(keys ...string) string {
	for _, k := range keys {
		if v := c.Fields[k]; v != "" {
			return v
		}
	}
	return ""
}

// DisplayName joins first and last name.
func (c *Contact) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type subscribersResponse struct {
	statusBody
	ListOfDetails []Contact `json:"list_of_details"`
}

// ContactInfo is the payload of listsubscribe.
type ContactInfo struct {
	Email     string `json:"Contact Email"`
	FirstName string `json:"First Name,omitempty"`
	LastName  string `json:"Last Name,omitempty"`
	Phone     string `json:"Phone,omitempty"`
}

// Campaign is one entry of recentcampaigns.
type Campaign struct {
	CampaignKey       string `json:"campaign_key"`
	CampaignName      string `json:"campaign_name"`
	CampaignStatus    string `json:"campaign_status"`
	CreatedDateString string `json:"created_date_string"`
	CreatedTime       string `json:"created_time"`
}

// IsDraft reports whether the campaign can still be sent.
func (c *Campaign) IsDraft() bool {
	return strings.EqualFold(c.CampaignStatus, "draft")
}

type recentCampaignsResponse struct {
	statusBody
	RecentCampaigns []Campaign `json:"recent_campaigns"`
}

// CreateCampaignRequest holds the parameters of createCampaign.
type CreateCampaignRequest struct {
	CampaignName string
	FromEmail    string
	Subject      string
	ListKey      string
	ContentURL   string
}

// CreateCampaignResponse is the reply of createCampaign.
type CreateCampaignResponse struct {
	CampaignKey string `json:"campaignKey"`
	Message     string `json:"-"`
}

// statusBody carries every success/error discriminant the Campaigns API uses.
// Which one is authoritative depends on the endpoint.
type statusBody struct {
	Status   string     `json:"status"`
	Code     flexString `json:"code"`
	Message  string     `json:"message"`
	Response *struct {
		Code    flexString `json:"code"`
		Message string     `json:"message"`
	} `json:"response"`
}
