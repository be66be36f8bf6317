package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/inovacc/rael/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show settings and store secrets",
	Long: `Settings live in config.yaml in the application directory and can be
overridden with environment variables. Secrets are read from the
environment first, then from the OS keyring.

Available Commands:
  init        Write the effective settings to config.yaml
  show        Print the effective settings and where each secret comes from
  set-secret  Store a secret in the OS keyring`,
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective settings to config.yaml",
	Long: `Write the effective settings, defaults plus environment overrides, to
config.yaml in the application directory. Secrets are never written.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE:  runConfigShow,
}

var configSetSecretCmd = &cobra.Command{
	Use:   "set-secret NAME [VALUE]",
	Short: "Store a secret in the OS keyring",
	Long: `Store a secret in the OS keyring. The value is read from standard
input without echo when omitted.

Secrets: ` + strings.Join(config.Secrets, ", ") + `

Examples:
  rael config set-secret JWT_SECRET
  rael config set-secret GITHUB_TOKEN ghp_xxx`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSetSecret,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetSecretCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config.yaml")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.Dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Wrote "+path))

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s %s\n", dimStyle.Render("# directory:"), cfg.Dir)
	_, _ = fmt.Fprint(out, string(data))
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, dimStyle.Render("# secrets"))

	for _, name := range config.Secrets {
		_, _ = fmt.Fprintf(out, "%s: %s\n", name, secretSource(name))
	}

	if token, err := cfg.ProviderToken(); err == nil {
		_, _ = fmt.Fprintf(out, "%s %s (%s)\n", dimStyle.Render("# provider token from"), token.Source, token.Name)
	}

	return nil
}

func secretSource(name string) string {
	res, err := config.NewResolver(name).WithEnv(name).WithKeyring(name).Resolve()
	if err != nil {
		if errors.Is(err, config.ErrNotConfigured) {
			return "not set"
		}

		return "error: " + err.Error()
	}

	return string(res.Source)
}

func runConfigSetSecret(cmd *cobra.Command, args []string) error {
	name := strings.ToUpper(args[0])
	if !slices.Contains(config.Secrets, name) {
		return fmt.Errorf("unknown secret %q (known: %s)", args[0], strings.Join(config.Secrets, ", "))
	}

	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		var err error

		value, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}

	if value == "" {
		return errors.New("secret value is empty")
	}

	if err := config.SetSecret(name, value); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(name+" stored in the OS keyring."))

	return nil
}
