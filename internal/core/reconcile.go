package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inovacc/rael/internal/model"
	"github.com/inovacc/rael/internal/provider"
)

// Divergence is an ACTIVE record whose remote repository is missing
type Divergence struct {
	Record model.RepositoryRecord
	Reason string
}

// CheckReport summarizes registry/provider disagreement
type CheckReport struct {
	Checked int

	// Missing lists ACTIVE records with no remote repository
	Missing []Divergence

	// Errors lists records that could not be checked
	Errors []Divergence

	// Pending lists unresolved journal entries
	Pending []model.ReconcileEntry

	// Unsupported is set when the provider cannot fetch repositories by id
	Unsupported bool
}

// Consistent reports whether nothing diverges
func (r *CheckReport) Consistent() bool {
	return len(r.Missing) == 0 && len(r.Errors) == 0 && len(r.Pending) == 0
}

// Check compares every ACTIVE record with the provider and lists the
// unresolved journal entries. It changes nothing.
func (o *Orchestrator) Check(ctx context.Context, creds Credentials) (*CheckReport, error) {
	if _, err := creds.Identity(ctx); err != nil {
		return nil, err
	}

	records, err := o.registry.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}

	pending, err := o.journal.List()
	if err != nil {
		return nil, err
	}

	report := &CheckReport{Pending: pending}

	inspector, ok := provider.AsInspector(o.provider)
	if !ok {
		report.Unsupported = true
		return report, nil
	}

	for _, record := range records {
		report.Checked++

		remote, err := inspector.GetRemoteRepository(ctx, record.ProviderRepositoryID)
		switch {
		case err != nil:
			report.Errors = append(report.Errors, Divergence{Record: record, Reason: err.Error()})
		case remote == nil:
			report.Missing = append(report.Missing, Divergence{Record: record, Reason: "remote repository not found"})
		}
	}

	return report, nil
}

// ReconcileReport summarizes one reconcile pass
type ReconcileReport struct {
	Resolved []model.ReconcileEntry
	Failed   []model.ReconcileEntry
	Skipped  []model.ReconcileEntry
}

// Reconcile replays every journal entry once. Both kinds are settled by
// deleting the remote repository; a 404 counts as settled. Failed entries
// stay in the journal with their attempt count bumped.
func (o *Orchestrator) Reconcile(ctx context.Context, creds Credentials) (*ReconcileReport, error) {
	if _, err := creds.Identity(ctx); err != nil {
		return nil, err
	}

	entries, err := o.journal.List()
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{}

	for _, entry := range entries {
		if entry.Provider != o.provider.Name() {
			report.Skipped = append(report.Skipped, entry)
			continue
		}

		logger := o.logger.With(slog.Uint64("seq", entry.Seq), slog.String("kind", string(entry.Kind)), slog.String("repo", entry.Name))

		err := o.provider.DeleteRemoteRepository(ctx, entry.ProviderRepositoryID)
		if err != nil && !provider.IsGone(err) {
			logger.Warn("reconcile attempt failed", slog.Any("error", err))

			if rerr := o.journal.RecordAttempt(entry.Seq, err.Error()); rerr != nil {
				return report, rerr
			}

			entry.Attempts++
			entry.LastError = err.Error()
			report.Failed = append(report.Failed, entry)

			continue
		}

		if err := o.journal.Resolve(entry.Seq); err != nil {
			return report, err
		}

		logger.Info("divergence resolved")

		report.Resolved = append(report.Resolved, entry)
	}

	return report, nil
}
