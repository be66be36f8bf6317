package cmd

import (
	"fmt"

	"github.com/inovacc/rael/internal/model"
	"github.com/spf13/cobra"
)

var reposCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the registry with the provider",
	Long: `Look up every active repository on the provider and report those
that no longer exist there, along with remote operations still waiting
for 'rael repos reconcile'. Nothing is changed.`,
	RunE: runReposCheck,
}

var reposReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Retry remote deletes that failed earlier",
	Long: `Replay every journaled divergence once: repositories created on the
provider whose registration failed, and deleted repositories whose remote
delete failed. Entries that succeed, or whose remote is already gone, are
removed from the journal; failures stay for the next run.`,
	RunE: runReposReconcile,
}

func init() {
	reposCmd.AddCommand(reposCheckCmd)
	reposCmd.AddCommand(reposReconcileCmd)
}

func runReposCheck(cmd *cobra.Command, _ []string) error {
	return withApp(func(a *app) error {
		orch, session, _, err := a.workflows(cmd.Context())
		if err != nil {
			return err
		}

		report, err := orch.Check(cmd.Context(), session)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if report.Unsupported {
			_, _ = fmt.Fprintf(out, "%s\n", warnStyle.Render("Provider "+a.cfg.Provider+" cannot look repositories up; only the journal was checked."))
		} else {
			_, _ = fmt.Fprintf(out, "Checked %d repositories.\n", report.Checked)
		}

		for _, d := range report.Missing {
			_, _ = fmt.Fprintf(out, "%s %s: %s\n", errStyle.Render("missing"), d.Record.Name, d.Reason)
		}

		for _, d := range report.Errors {
			_, _ = fmt.Fprintf(out, "%s %s: %s\n", warnStyle.Render("error"), d.Record.Name, d.Reason)
		}

		for _, e := range report.Pending {
			_, _ = fmt.Fprintf(out, "%s %s\n", warnStyle.Render("pending"), describeEntry(e))
		}

		if report.Consistent() {
			_, _ = fmt.Fprintln(out, okStyle.Render("Registry and provider agree."))
		}

		return nil
	})
}

func runReposReconcile(cmd *cobra.Command, _ []string) error {
	return withApp(func(a *app) error {
		orch, session, _, err := a.workflows(cmd.Context())
		if err != nil {
			return err
		}

		report, err := orch.Reconcile(cmd.Context(), session)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if len(report.Resolved)+len(report.Failed)+len(report.Skipped) == 0 {
			_, _ = fmt.Fprintln(out, "Nothing to reconcile.")
			return nil
		}

		for _, e := range report.Resolved {
			_, _ = fmt.Fprintf(out, "%s %s\n", okStyle.Render("resolved"), describeEntry(e))
		}

		for _, e := range report.Failed {
			_, _ = fmt.Fprintf(out, "%s %s\n", errStyle.Render("failed"), describeEntry(e))
		}

		for _, e := range report.Skipped {
			_, _ = fmt.Fprintf(out, "%s %s %s\n", dimStyle.Render("skipped"), describeEntry(e), dimStyle.Render("(provider "+e.Provider+")"))
		}

		if len(report.Failed) > 0 {
			return fmt.Errorf("%d of %d entries could not be reconciled", len(report.Failed), len(report.Resolved)+len(report.Failed))
		}

		return nil
	})
}

func describeEntry(e model.ReconcileEntry) string {
	s := fmt.Sprintf("#%d %s %s (remote %s)", e.Seq, e.Kind, e.Name, e.ProviderRepositoryID)

	if e.Attempts > 0 {
		s += fmt.Sprintf(", %d attempts", e.Attempts)
	}

	if e.LastError != "" {
		s += ": " + e.LastError
	}

	return s
}
