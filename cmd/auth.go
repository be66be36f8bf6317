package cmd

import (
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log in, inspect or end the current session",
	Long: `Authenticate against the local identity store.

A successful login caches one token on this machine. Every repository
command verifies it before doing anything else.

Available Commands:
  credential  Log in with email and password
  google      Log in through Google in the browser
  status      Show who is logged in
  logout      Remove the cached token`,
}

func init() {
	rootCmd.AddCommand(authCmd)
}
