package cmd

import (
	"fmt"

	"github.com/inovacc/rael/internal/git"
	"github.com/spf13/cobra"
)

var pushOpts git.PushOptions

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push committed changes to the remote repository",
	Long: `Push the current branch.

Examples:
  rael push
  rael push -u          # first push of a new branch`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Pushing changes to the remote repository...")

		if err := gitClient(cmd).Push(cmd.Context(), pushOpts); err != nil {
			switch {
			case git.IsNoUpstream(err):
				return fmt.Errorf("%w\nRun 'rael push -u' to publish the branch", err)
			case git.IsRejected(err):
				return fmt.Errorf("%w\nRun 'rael pull' first, or 'rael push -f' to overwrite", err)
			case git.IsAuthRequired(err):
				return fmt.Errorf("%w\nCheck the credentials git uses for origin", err)
			default:
				return err
			}
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Changes pushed successfully."))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().BoolVarP(&pushOpts.SetUpstream, "set-upstream", "u", false, "Publish the current branch to origin and track it")
	pushCmd.Flags().BoolVarP(&pushOpts.Force, "force", "f", false, "Force push with lease")
}
