package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/natserract/zohosync/companysync/services"
	zohocrm "github.com/natserract/zohosync/pkg/zoho/crm"
	"github.com/spf13/cobra"
)

var (
	syncDryRun      bool
	accountsPage    int
	accountsPerPage int
	accountsAll     bool
)

var syncAccountsCmd = &cobra.Command{
	Use:   "sync-accounts",
	Short: "Sync Zoho CRM accounts into companies",
	Long: `Fetches every Zoho CRM account and creates or updates the matching
company. Accounts are matched by Zoho ID, then by exact name. Accounts
without a name are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := application.companyStore(ctx)
		if err != nil {
			return err
		}

		var opts []services.SyncOption
		if syncDryRun {
			opts = append(opts, services.WithDryRun())
		}
		syncer := services.NewAccountSyncer(application.crm(), store, application.logger, opts...)

		report, err := syncer.SyncAll(ctx)
		if report != nil {
			_ = render(cmd.OutOrStdout(), report, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Created %d, updated %d, skipped %d, errors %d\n",
					report.Created, report.Updated, report.Skipped, report.Errors)
				return err
			})
		}
		return err
	},
}

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List synced companies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := application.companyStore(cmd.Context())
		if err != nil {
			return err
		}
		companies, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), companies, func(w io.Writer) error {
			rows := make([][]string, 0, len(companies))
			for _, c := range companies {
				rows = append(rows, []string{c.ID.String(), deref(c.ZohoID), c.DisplayTitle(), c.ChangedAt.Format("2006-01-02 15:04")})
			}
			return table(w, []string{"ID", "ZOHO ID", "TITLE", "CHANGED"}, rows)
		})
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List Zoho CRM accounts, one page or all of them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if accountsAll {
			accounts, err := application.crm().GetAllAccounts(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), accounts, func(w io.Writer) error {
				return accountsTable(w, accounts)
			})
		}

		resp, err := application.crm().GetAccounts(cmd.Context(), accountsPage, accountsPerPage)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), resp, func(w io.Writer) error {
			if err := accountsTable(w, resp.Data); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Page %d, more records: %s\n", accountsPage, strconv.FormatBool(resp.Info.MoreRecords))
			return err
		})
	},
}

func accountsTable(w io.Writer, accounts []zohocrm.Account) error {
	rows := make([][]string, 0, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		id, _ := a.ID.Value()
		industry, _ := a.Industry.Value()
		website, _ := a.Website.Value()
		rows = append(rows, []string{id, a.Name(), industry, website})
	}
	return table(w, []string{"ID", "NAME", "INDUSTRY", "WEBSITE"}, rows)
}

func init() {
	syncAccountsCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Match accounts and report without writing")
	accountsCmd.Flags().IntVar(&accountsPage, "page", 1, "Page number")
	accountsCmd.Flags().IntVar(&accountsPerPage, "per-page", zohocrm.MaxPerPage, "Records per page (max 200)")
	accountsCmd.Flags().BoolVar(&accountsAll, "all", false, "Fetch every page")
	accountsCmd.MarkFlagsMutuallyExclusive("all", "page")

	rootCmd.AddCommand(syncAccountsCmd, companiesCmd, accountsCmd)
}
