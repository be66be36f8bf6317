package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	branchName       string
	branchDeleteName string
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Create a branch",
	Long: `Create a branch and switch to it. A name that already exists locally or
on origin is refused.

Examples:
  rael branch -n feature/login
  rael branch delete -n feature/login`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := gitClient(cmd).CreateBranch(cmd.Context(), branchName); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("Created and switched to branch '%s'", branchName)))

		return nil
	},
}

var branchDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a branch locally and on origin",
	Long: `Delete a branch locally and on origin, wherever it exists. A branch
that is not fully merged is force-deleted. The current branch is refused.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := gitClient(cmd).DeleteBranch(cmd.Context(), branchDeleteName)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		switch {
		case res.Forced:
			_, _ = fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("Branch '%s' was not fully merged; forcibly deleted locally", branchDeleteName)))
		case res.Local:
			_, _ = fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("Deleted local branch '%s'", branchDeleteName)))
		default:
			_, _ = fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Branch '%s' does not exist locally", branchDeleteName)))
		}

		switch {
		case res.RemoteErr != nil:
			return fmt.Errorf("deleting remote branch '%s': %w", branchDeleteName, res.RemoteErr)
		case res.Remote:
			_, _ = fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("Deleted remote branch '%s'", branchDeleteName)))
		default:
			_, _ = fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Branch '%s' does not exist on the remote repository", branchDeleteName)))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(branchCmd)
	branchCmd.AddCommand(branchDeleteCmd)

	branchCmd.Flags().StringVarP(&branchName, "name", "n", "", "Branch name")
	_ = branchCmd.MarkFlagRequired("name")

	branchDeleteCmd.Flags().StringVarP(&branchDeleteName, "name", "n", "", "Branch name to delete")
	_ = branchDeleteCmd.MarkFlagRequired("name")
}
