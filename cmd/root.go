package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/inovacc/rael/internal/application"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	logFormat string
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   application.AppName,
	Short: "Provision and retire organization repositories",
	Long: `Rael creates and deletes repositories in your organization on the
configured provider and keeps a local registry of who owns what.

Log in once with 'rael auth credential' or 'rael auth google'; every
repository command then runs as that identity.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := newLogger(cmd.ErrOrStderr(), logFormat, verbose)
		if err != nil {
			return err
		}

		slog.SetDefault(logger)

		return nil
	},
}

// Execute runs the command tree. SIGINT and SIGTERM cancel the command
// context so listeners and in-flight requests wind down.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Application directory (default: $RAEL_HOME or the OS config dir)")
}

func newLogger(w io.Writer, format string, debug bool) (*slog.Logger, error) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (use text or json)", format)
	}
}
