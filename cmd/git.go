package cmd

import (
	"github.com/inovacc/rael/internal/git"
	"github.com/spf13/cobra"
)

// gitClient runs git in the working directory with output on the command's streams
func gitClient(cmd *cobra.Command) *git.Client {
	c := git.NewClient()
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()

	return c
}
