package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull the latest changes from the remote repository",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Pulling the latest changes from the remote repository...")

		if err := gitClient(cmd).Pull(cmd.Context()); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Changes pulled successfully."))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
