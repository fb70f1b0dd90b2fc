package cmd

import (
	"fmt"
	"io"

	zohocampaigns "github.com/natserract/zohosync/pkg/zoho/campaigns"
	"github.com/spf13/cobra"
)

var (
	contactsListKey string
	subscriber      zohocampaigns.ContactInfo
	newCampaign     zohocampaigns.CreateCampaignRequest
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "List Zoho Campaigns mailing lists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lists, err := application.campaigns().GetMailingLists(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), lists, func(w io.Writer) error {
			rows := make([][]string, 0, len(lists))
			for _, l := range lists {
				rows = append(rows, []string{l.ListKey, l.ListName, string(l.ContactsCount)})
			}
			return table(w, []string{"LIST KEY", "NAME", "CONTACTS"}, rows)
		})
	},
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List subscribers of one mailing list, or of all lists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := application.campaigns()

		var (
			contacts []zohocampaigns.Contact
			err      error
		)
		if contactsListKey != "" {
			contacts, err = client.GetListSubscribers(cmd.Context(), contactsListKey)
		} else {
			contacts, err = client.GetAllContacts(cmd.Context())
		}
		if err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), contacts, func(w io.Writer) error {
			rows := make([][]string, 0, len(contacts))
			for i := range contacts {
				c := &contacts[i]
				rows = append(rows, []string{c.Email, c.DisplayName(), c.Phone, c.ListName, c.ListKey})
			}
			return table(w, []string{"EMAIL", "NAME", "PHONE", "LIST", "LIST KEY"}, rows)
		})
	},
}

var contactCmd = &cobra.Command{
	Use:   "contact <list-key> <email>",
	Short: "Show one subscriber of a mailing list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := application.campaigns().FindContact(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), c, func(w io.Writer) error {
			return table(w, []string{"EMAIL", "NAME", "PHONE", "LIST KEY"},
				[][]string{{c.Email, c.DisplayName(), c.Phone, args[0]}})
		})
	},
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <list-key> <email>",
	Short: "Add or update a contact on a mailing list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		info := subscriber
		info.Email = args[1]
		if err := application.campaigns().Subscribe(cmd.Context(), args[0], info); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subscribed %s to %s\n", info.Email, args[0])
		return nil
	},
}

var unsubscribeCmd = &cobra.Command{
	Use:   "unsubscribe <list-key> <email>",
	Short: "Remove a contact from a mailing list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.campaigns().Unsubscribe(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unsubscribed %s from %s\n", args[1], args[0])
		return nil
	},
}

var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "List recent campaigns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		campaigns, err := application.campaigns().GetRecentCampaigns(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), campaigns, func(w io.Writer) error {
			rows := make([][]string, 0, len(campaigns))
			for _, c := range campaigns {
				rows = append(rows, []string{c.CampaignKey, c.CampaignName, c.CampaignStatus, c.CreatedDateString})
			}
			return table(w, []string{"CAMPAIGN KEY", "NAME", "STATUS", "CREATED"}, rows)
		})
	},
}

var createCampaignCmd = &cobra.Command{
	Use:   "create-campaign",
	Short: "Create a draft campaign for one mailing list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := application.campaigns().CreateCampaign(cmd.Context(), newCampaign)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), resp, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Created campaign %s\n", resp.CampaignKey)
			return err
		})
	},
}

var sendCampaignCmd = &cobra.Command{
	Use:   "send-campaign <campaign-key>",
	Short: "Send a draft campaign now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.campaigns().SendCampaign(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent campaign %s\n", args[0])
		return nil
	},
}

func init() {
	contactsCmd.Flags().StringVar(&contactsListKey, "list", "", "Mailing list key (default all lists)")

	subscribeCmd.Flags().StringVar(&subscriber.FirstName, "first-name", "", "First name")
	subscribeCmd.Flags().StringVar(&subscriber.LastName, "last-name", "", "Last name")
	subscribeCmd.Flags().StringVar(&subscriber.Phone, "phone", "", "Phone number")

	createCampaignCmd.Flags().StringVar(&newCampaign.CampaignName, "name", "", "Campaign name")
	createCampaignCmd.Flags().StringVar(&newCampaign.FromEmail, "from", "", "Sender email address")
	createCampaignCmd.Flags().StringVar(&newCampaign.Subject, "subject", "", "Email subject")
	createCampaignCmd.Flags().StringVar(&newCampaign.ListKey, "list", "", "Mailing list key")
	createCampaignCmd.Flags().StringVar(&newCampaign.ContentURL, "content-url", "", "URL of the HTML content")
	for _, name := range []string{"name", "from", "subject", "list"} {
		_ = createCampaignCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(listsCmd, contactsCmd, contactCmd, subscribeCmd, unsubscribeCmd, campaignsCmd, createCampaignCmd, sendCampaignCmd)
}
