package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is logged in",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	return withApp(func(a *app) error {
		session, err := a.session()
		if err != nil {
			return err
		}

		identity, err := session.Identity(cmd.Context())
		if err != nil {
			return err
		}

		claims, err := session.Claims()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Logged in as %s (%s)\n", identity.Email, identity.UserName)
		_, _ = fmt.Fprintf(out, "  Identity: %s\n", identity.ID)

		if claims.ExpiresAt != nil {
			expires := claims.ExpiresAt.Time
			_, _ = fmt.Fprintf(out, "  Expires:  %s %s\n",
				expires.Local().Format(time.RFC1123),
				dimStyle.Render(fmt.Sprintf("(in %s)", time.Until(expires).Round(time.Minute))))
		}

		_, _ = fmt.Fprintf(out, "  Token:    %s\n", dimStyle.Render(a.cache.Path()))

		return nil
	})
}
