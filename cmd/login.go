package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"runanalyzer/internal/auth"
	"runanalyzer/internal/store"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Connect your Strava account",
	Long: `Run the Strava OAuth flow. A local server on the configured callback port
receives the authorization code; the tokens are stored and refreshed
automatically afterwards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx, cmd, setupOptions{console: cmd.ErrOrStderr(), requireStrava: true})
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		result, err := auth.Authenticate(ctx, a.authConfig(), out, a.logger)
		if err != nil {
			return fmt.Errorf("authentication: %w", err)
		}

		stored := &store.Auth{
			AthleteID:    result.AthleteID,
			AccessToken:  result.Token.AccessToken,
			RefreshToken: result.Token.RefreshToken,
			ExpiresAt:    result.Token.Expiry,
			Scope:        result.GrantedScope,
		}
		if err := a.db.SaveAuth(stored); err != nil {
			return fmt.Errorf("saving auth: %w", err)
		}
		a.logger.Info("Stored Strava tokens", zap.Int64("athlete_id", result.AthleteID))

		fmt.Fprintln(out)
		fmt.Fprintf(out, "Successfully authenticated as athlete %d!\n", result.AthleteID)
		if !result.HasRequiredScope() {
			fmt.Fprintf(out, "Warning: the %q permission was not granted, so private runs will be missing.\n", auth.RequiredScope)
			fmt.Fprintln(out, "Run 'runanalyzer login' again and tick every box to fix this.")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored Strava tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context(), cmd, setupOptions{console: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.db.DeleteAuth(); err != nil {
			return fmt.Errorf("deleting auth: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out of Strava.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
