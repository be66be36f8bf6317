package cmd

import (
	"fmt"

	"github.com/cli/go-gh/v2/pkg/browser"
	"github.com/inovacc/rael/internal/auth"
	"github.com/spf13/cobra"
)

var noBrowser bool

var authGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Log in through Google in the browser",
	Long: `Open the Google consent page and wait for the redirect on a local
listener. The Google account email must belong to a provisioned identity.

The listener binds localhost on the configured callback port
(RAEL_CALLBACK_PORT, default 8080) and gives up after the login timeout
(RAEL_LOGIN_TIMEOUT, default 5m). Ctrl+C aborts the login.

Examples:
  rael auth google
  rael auth google --no-browser`,
	RunE: runAuthGoogle,
}

func init() {
	authCmd.AddCommand(authGoogleCmd)

	authGoogleCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the login URL instead of opening a browser")
}

func runAuthGoogle(cmd *cobra.Command, _ []string) error {
	return withApp(func(a *app) error {
		clientID, clientSecret, err := a.cfg.GoogleClient()
		if err != nil {
			return err
		}

		tokens, err := a.tokens()
		if err != nil {
			return err
		}

		var b auth.Browser
		if !noBrowser {
			b = browser.New("", cmd.OutOrStdout(), cmd.ErrOrStderr())
		}

		authenticator := auth.NewOAuthAuthenticator(auth.OAuthConfig{
			OAuth2:  auth.GoogleOAuthConfig(clientID, clientSecret),
			Port:    a.cfg.CallbackPort,
			Path:    a.cfg.CallbackPath,
			Timeout: a.cfg.LoginTimeout,
		}, auth.GoogleProfiles{}, a.store.Identities(), tokens, a.cache, b, cmd.OutOrStdout(), a.logger)

		if _, err := authenticator.Login(cmd.Context()); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Authenticated successfully."))

		return nil
	})
}
