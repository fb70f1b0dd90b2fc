package zohocampaigns

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/natserract/zohosync/pkg/zoho"
	"go.uber.org/zap"
)

// GetMailingLists retrieves every mailing list of the account.
func (c *Client) GetMailingLists(ctx context.Context) ([]MailingList, error) {
	c.logger.Info("Getting mailing lists")

	var lists []MailingList
	for from := 1; ; from += pageRange {
		var resp mailingListsResponse
		err := c.get(ctx, "/getmailinglists", "getmailinglists", map[string]string{
			"sort":      "asc",
			"fromindex": strconv.Itoa(from),
			"range":     strconv.Itoa(pageRange),
		}, &resp)
		if err != nil {
			return nil, err
		}
		if err := checkStatus("getmailinglists", &resp.statusBody); err != nil {
			c.logger.Error("Get mailing lists failed", zap.Error(err))
			return nil, err
		}

		lists = append(lists, resp.ListOfDetails...)
		if len(resp.ListOfDetails) < pageRange {
			break
		}
	}

	c.logger.Info("Successfully retrieved mailing lists", zap.Int("items_count", len(lists)))
	return lists, nil
}

// GetListSubscribers retrieves the active subscribers of one list.
func (c *Client) GetListSubscribers(ctx context.Context, listKey string) ([]Contact, error) {
	if listKey == "" {
		return nil, fmt.Errorf("%w: list key is required", zoho.ErrValidation)
	}
	c.logger.Info("Getting list subscribers", zap.String("list_key", listKey))

	var contacts []Contact
	for from := 1; ; from += pageRange {
		var resp subscribersResponse
		err := c.get(ctx, "/getlistsubscribers", "getlistsubscribers", map[string]string{
			"listkey":   listKey,
			"status":    "active",
			"sort":      "asc",
			"fromindex": strconv.Itoa(from),
			"range":     strconv.Itoa(pageRange),
		}, &resp)
		if err != nil {
			return nil, err
		}
		if err := checkStatus("getlistsubscribers", &resp.statusBody); err != nil {
			c.logger.Error("Get list subscribers failed", zap.String("list_key", listKey), zap.Error(err))
			return nil, err
		}

		for i := range resp.ListOfDetails {
			resp.ListOfDetails[i].ListKey = listKey
		}
		contacts = append(contacts, resp.ListOfDetails...)
		if len(resp.ListOfDetails) < pageRange {
			break
		}
	}

	c.logger.Info("Successfully retrieved list subscribers",
		zap.String("list_key", listKey),
		zap.Int("items_count", len(contacts)))
	return contacts, nil
}

// GetAllContacts collects the subscribers of every mailing list, each tagged
// with its list key and name. Lists are read one after another.
func (c *Client) GetAllContacts(ctx context.Context) ([]Contact, error) {
	lists, err := c.GetMailingLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get mailing lists: %w", err)
	}

	var all []Contact
	for _, list := range lists {
		contacts, err := c.GetListSubscribers(ctx, list.ListKey)
		if err != nil {
			return nil, fmt.Errorf("failed to get subscribers of list %s: %w", list.ListKey, err)
		}
		for i := range contacts {
			contacts[i].ListName = list.ListName
		}
		all = append(all, contacts...)
	}

	c.logger.Info("Retrieved all contacts",
		zap.Int("list_count", len(lists)),
		zap.Int("contact_count", len(all)))
	return all, nil
}

// FindContact returns the subscriber with email on listKey, or ErrNotFound.
func (c *Client) FindContact(ctx context.Context, listKey, email string) (*Contact, error) {
	contacts, err := c.GetListSubscribers(ctx, listKey)
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		if contacts[i].Email == email {
			return &contacts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: contact %s on list %s", zoho.ErrNotFound, email, listKey)
}

// Subscribe adds a contact to a list, or updates it when already subscribed.
func (c *Client) Subscribe(ctx context.Context, listKey string, info ContactInfo) error {
	if listKey == "" || info.Email == "" {
		return fmt.Errorf("%w: list key and email are required", zoho.ErrValidation)
	}
	contactInfo, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode contact info: %w", err)
	}

	var resp statusBody
	err = c.post(ctx, "/json/listsubscribe", "listsubscribe", map[string]string{
		"listkey":     listKey,
		"contactinfo": string(contactInfo),
		"source":      "zohosync",
	}, &resp)
	if err != nil {
		return err
	}
	if err := checkStatus("listsubscribe", &resp); err != nil {
		c.logger.Error("Subscribe failed", zap.String("list_key", listKey), zap.String("email", info.Email), zap.Error(err))
		return err
	}

	c.logger.Info("Subscribed contact", zap.String("list_key", listKey), zap.String("email", info.Email))
	return nil
}

// Unsubscribe removes a contact from a list.
func (c *Client) Unsubscribe(ctx context.Context, listKey, email string) error {
	if listKey == "" || email == "" {
		return fmt.Errorf("%w: list key and email are required", zoho.ErrValidation)
	}
	contactInfo, err := json.Marshal(ContactInfo{Email: email})
	if err != nil {
		return fmt.Errorf("failed to encode contact info: %w", err)
	}

	var resp statusBody
	err = c.post(ctx, "/json/listunsubscribe", "listunsubscribe", map[string]string{
		"listkey":     listKey,
		"contactinfo": string(contactInfo),
	}, &resp)
	if err != nil {
		return err
	}
	if err := checkStatus("listunsubscribe", &resp); err != nil {
		c.logger.Error("Unsubscribe failed", zap.String("list_key", listKey), zap.String("email", email), zap.Error(err))
		return err
	}

	c.logger.Info("Unsubscribed contact", zap.String("list_key", listKey), zap.String("email", email))
	return nil
}
