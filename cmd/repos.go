package cmd

import (
	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:     "repos",
	Aliases: []string{"repo"},
	Short:   "Create, list and delete organization repositories",
	Long: `Manage repositories in the configured organization.

Every subcommand requires a login. Repositories are recorded locally with
their owner; only the owner may delete one.

Available Commands:
  create     Create a repository
  list       List active repositories
  delete     Delete a repository you own
  check      Compare the registry with the provider
  reconcile  Retry remote deletes that failed earlier`,
}

func init() {
	rootCmd.AddCommand(reposCmd)
}
