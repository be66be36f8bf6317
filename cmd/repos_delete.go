package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	deleteName string
	deleteYes  bool
)

var reposDeleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"rm"},
	Short:   "Delete a repository you own",
	Long: `Delete a repository from the provider and mark it deleted locally.

The record is kept with status DELETED and its name becomes available
again. If the provider delete fails, the repository stays deleted locally
and 'rael repos reconcile' retries the remote delete.

Examples:
  rael repos delete -n payments-api
  rael repos delete -n payments-api -y`,
	RunE: runReposDelete,
}

func init() {
	reposCmd.AddCommand(reposDeleteCmd)

	reposDeleteCmd.Flags().StringVarP(&deleteName, "name", "n", "", "Repository name")
	reposDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip confirmation prompt")
	_ = reposDeleteCmd.MarkFlagRequired("name")
}

func runReposDelete(cmd *cobra.Command, _ []string) error {
	return withApp(func(a *app) error {
		orch, session, _, err := a.workflows(cmd.Context())
		if err != nil {
			return err
		}

		if !deleteYes && !promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout(),
			fmt.Sprintf("Delete repository %q? This cannot be undone. [y/N]: ", deleteName)) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		record, err := orch.Delete(cmd.Context(), session, deleteName)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("Repository %q deleted.", record.Name)))

		return nil
	})
}
