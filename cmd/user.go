package cmd

import (
	"fmt"
	"strings"

	"github.com/inovacc/rael/internal/auth"
	"github.com/inovacc/rael/internal/model"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Provision local identities",
}

var userAdd struct {
	email    string
	userName string
	name     string
	password string
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an identity",
	Long: `Add a local identity. The user name must match the account login in
the provider organization. Without --password the identity can only log
in through Google.

Examples:
  rael user add --email alice@example.com --user-name alice --password secret
  rael user add --email bob@example.com --user-name bob --name "Bob Smith"`,
	RunE: runUserAdd,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)

	userAddCmd.Flags().StringVar(&userAdd.email, "email", "", "Email address")
	userAddCmd.Flags().StringVar(&userAdd.userName, "user-name", "", "Provider login")
	userAddCmd.Flags().StringVar(&userAdd.name, "name", "", "Display name")
	userAddCmd.Flags().StringVar(&userAdd.password, "password", "", "Password for credential login")
	_ = userAddCmd.MarkFlagRequired("email")
	_ = userAddCmd.MarkFlagRequired("user-name")
}

func runUserAdd(cmd *cobra.Command, _ []string) error {
	email := strings.TrimSpace(userAdd.email)
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email %q", userAdd.email)
	}

	identity := &model.Identity{
		Email:    email,
		UserName: strings.TrimSpace(userAdd.userName),
		Name:     strings.TrimSpace(userAdd.name),
	}

	if userAdd.password != "" {
		hash, err := auth.HashPassword(userAdd.password)
		if err != nil {
			return err
		}

		identity.CredentialHash = hash
	}

	return withApp(func(a *app) error {
		if err := a.store.Identities().Create(cmd.Context(), identity); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", okStyle.Render("Added identity"), identity.Email, identity.ID)

		return nil
	})
}
