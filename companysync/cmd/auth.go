package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/natserract/zohosync/companysync/server"
	"github.com/natserract/zohosync/pkg/zoho"
	"github.com/spf13/cobra"
)

var authURLCmd = &cobra.Command{
	Use:   "auth-url",
	Short: "Print the Zoho consent URL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		authURL := application.tokens.AuthorizationURL()
		if authURL == "" {
			return fmt.Errorf("%w: ZOHO_CLIENT_ID and ZOHO_REDIRECT_URI are required", zoho.ErrNotConfigured)
		}
		fmt.Fprintln(cmd.OutOrStdout(), authURL)
		return nil
	},
}

var exchangeCmd = &cobra.Command{
	Use:   "exchange <code>",
	Short: "Exchange an authorization code for tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := application.tokens.ExchangeCode(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), resp, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Connected. Access token expires in %ds, API domain %s\n",
				resp.ExpiresIn, application.tokens.APIDomain(cmd.Context()))
			return err
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the access token now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := application.tokens.RefreshAccessToken(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), resp, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, "Access token refreshed.")
			return err
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the connection status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cred, err := application.tokens.Credential(cmd.Context())
		if err != nil {
			return err
		}

		status := server.NewStatus(cred, application.tokens.APIDomain(cmd.Context()), time.Now())

		return render(cmd.OutOrStdout(), status, func(w io.Writer) error {
			fmt.Fprintf(w, "Connected:     %t\n", status.Connected)
			fmt.Fprintf(w, "Refreshable:   %t\n", cred.RefreshToken != "")
			fmt.Fprintf(w, "API domain:    %s\n", status.APIDomain)
			if status.ExpiresAt != nil {
				fmt.Fprintf(w, "Expires at:    %s (expired: %t)\n", status.ExpiresAt.Format(time.RFC3339), status.Expired)
			}
			return nil
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the OAuth callback endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := server.New(application.tokens, application.logger)
		return srv.ListenAndServe(cmd.Context(), application.cfg.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(authURLCmd, exchangeCmd, refreshCmd, statusCmd, serveCmd)
}
