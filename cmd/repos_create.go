package cmd

import (
	"fmt"

	"github.com/inovacc/rael/internal/core"
	"github.com/spf13/cobra"
)

var createOpts core.CreateRequest

var reposCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a repository",
	Long: `Create a repository in the organization and record it as yours.

With --generate-description and no --description, a short description is
generated from the name when OPENAI_TOKEN is configured.

Examples:
  rael repos create -n payments-api -d "Payments service"
  rael repos create -n web -p --readme --gitignore
  rael repos create -n billing --generate-description`,
	RunE: runReposCreate,
}

func init() {
	reposCmd.AddCommand(reposCreateCmd)

	reposCreateCmd.Flags().StringVarP(&createOpts.Name, "name", "n", "", "Repository name")
	reposCreateCmd.Flags().StringVarP(&createOpts.Description, "description", "d", "", "Repository description")
	reposCreateCmd.Flags().BoolVarP(&createOpts.Private, "private", "p", false, "Create a private repository")
	reposCreateCmd.Flags().BoolVar(&createOpts.Readme, "readme", false, "Add a README.md")
	reposCreateCmd.Flags().BoolVar(&createOpts.Gitignore, "gitignore", false, "Add a .gitignore")
	reposCreateCmd.Flags().BoolVar(&createOpts.GenerateDescription, "generate-description", false, "Generate a description when none is given")
	_ = reposCreateCmd.MarkFlagRequired("name")
}

func runReposCreate(cmd *cobra.Command, _ []string) error {
	return withApp(func(a *app) error {
		orch, session, _, err := a.workflows(cmd.Context())
		if err != nil {
			return err
		}

		res, err := orch.Create(cmd.Context(), session, createOpts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("Repository %q created.", res.Record.Name)))

		if res.Record.Description != "" {
			_, _ = fmt.Fprintf(out, "  Description: %s\n", res.Record.Description)
		}

		_, _ = fmt.Fprintf(out, "  Clone URL:   %s\n", res.Remote.CloneURL)

		for _, ferr := range res.FileErrors {
			_, _ = fmt.Fprintln(out, warnStyle.Render("  Warning: could not create "+ferr.Error()))
		}

		return nil
	})
}
