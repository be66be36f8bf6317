package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/inovacc/rael/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	credentialEmail    string
	credentialPassword string
)

var authCredentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Log in with email and password",
	Long: `Log in with an email and password provisioned with 'rael user add'.

The password is prompted for without echo when --password is omitted.

Examples:
  rael auth credential -e alice@example.com
  rael auth credential -e alice@example.com -p secret`,
	RunE: runAuthCredential,
}

func init() {
	authCmd.AddCommand(authCredentialCmd)

	authCredentialCmd.Flags().StringVarP(&credentialEmail, "email", "e", "", "Account email")
	authCredentialCmd.Flags().StringVarP(&credentialPassword, "password", "p", "", "Account password (prompted when omitted)")
	_ = authCredentialCmd.MarkFlagRequired("email")
}

func runAuthCredential(cmd *cobra.Command, _ []string) error {
	password := credentialPassword
	if password == "" {
		var err error

		password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}

	return withApp(func(a *app) error {
		session, err := a.session()
		if err != nil {
			return err
		}

		tokens, err := a.tokens()
		if err != nil {
			return err
		}

		authenticator := auth.NewCredentialAuthenticator(a.store.Identities(), tokens, a.logger)

		token, err := authenticator.Authenticate(cmd.Context(), credentialEmail, password)
		if err != nil {
			return err
		}

		if err := session.Save(token); err != nil {
			return fmt.Errorf("saving token: %w", err)
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Logged in as "+strings.ToLower(strings.TrimSpace(credentialEmail))))

		return nil
	})
}

// readPassword prompts without echo on a terminal and reads one line otherwise
func readPassword(in io.Reader, out io.Writer) (string, error) {
	_, _ = fmt.Fprint(out, "Password: ")

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(out)

		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}

		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}
