package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/inovacc/rael/internal/application"
	"github.com/inovacc/rael/internal/tokencache"
	"github.com/spf13/cobra"
)

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the cached token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := tokencache.New(filepath.Join(cfg.Dir, application.TokenFileName)).Clear(); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")

		return nil
	},
}

func init() {
	authCmd.AddCommand(authLogoutCmd)
}
