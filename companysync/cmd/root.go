package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	outputFormat string
	application  *app
)

var rootCmd = &cobra.Command{
	Use:   "companysync",
	Short: "Zoho CRM and Campaigns integration",
	Long: `Connects to Zoho through OAuth2, syncs Zoho CRM accounts into local
company records, and manages Zoho Campaigns mailing lists and campaigns.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat != formatText && outputFormat != formatJSON {
			return fmt.Errorf("unsupported output format: %s", outputFormat)
		}
		var err error
		application, err = newApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			application.Close()
		}
	},
}

// Execute runs the root command until it completes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if application != nil {
			application.Close()
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatText, "Output format (text|json)")
}
