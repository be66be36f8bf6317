package cmd

import (
	"fmt"

	"github.com/inovacc/rael/internal/core"
	"github.com/spf13/cobra"
)

var reposListJSON bool

var reposListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List active repositories",
	Long: `List every active repository in the registry, oldest first.

Examples:
  rael repos list
  rael repos list --json`,
	RunE: runReposList,
}

func init() {
	reposCmd.AddCommand(reposListCmd)

	reposListCmd.Flags().BoolVar(&reposListJSON, "json", false, "Output as JSON")
}

func runReposList(cmd *cobra.Command, _ []string) error {
	return withApp(func(a *app) error {
		session, err := a.session()
		if err != nil {
			return err
		}

		records, err := core.ListActive(cmd.Context(), session, a.store.Repositories())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if reposListJSON {
			return printJSON(out, records)
		}

		if len(records) == 0 {
			_, _ = fmt.Fprintln(out, "No repositories found.")
			_, _ = fmt.Fprintln(out, dimStyle.Render("Create one with: rael repos create -n <name>"))

			return nil
		}

		_, _ = fmt.Fprintln(out, renderRepositoryTable(records))

		return nil
	})
}
