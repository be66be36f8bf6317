package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var commitMessage string

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Stage all changes and commit",
	Long: `Stage every change in the work tree and commit it. The message must
follow Conventional Commits: type(scope): subject, where type is one of
feat, fix, docs, style, refactor, test, chore, build, ci, perf or revert.

Examples:
  rael commit -m "feat(login): add remember me option"
  rael commit -m "fix: handle empty input"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		committed, err := gitClient(cmd).Commit(cmd.Context(), commitMessage)
		if err != nil {
			return err
		}

		if !committed {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No changes detected to commit.")
			return nil
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Changes committed successfully."))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(commitCmd)

	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "Commit message")
	_ = commitCmd.MarkFlagRequired("message")
}
