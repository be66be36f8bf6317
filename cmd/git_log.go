package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Display the commit history",
	Long: `Display the commit history of the current branch, newest first.

Examples:
  rael log
  rael log -n 5`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		entries, err := gitClient(cmd).Log(cmd.Context(), logLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if len(entries) == 0 {
			_, _ = fmt.Fprintln(out, "No commits found in the repository.")
			return nil
		}

		for _, e := range entries {
			_, _ = fmt.Fprintf(out, "%s - %s, %s : %s\n", okStyle.Render(e.Hash), e.Author, dimStyle.Render(e.When), e.Subject)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 0, "Show at most this many commits (0 for all)")
}
