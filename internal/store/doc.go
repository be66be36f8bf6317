// Package store opens the local state of rael.
//
// Two backends live side by side, by default in the application directory:
//
//   - rael.db, a SQLite database (see the sqlite subpackage) holding
//     identities and the repository registry
//   - reconcile.bolt, a bbolt file holding the [Journal] of divergences
//     between the registry and the remote provider
//
// Consumers depend on the [IdentityStore], [Registry] and
// [ReconcileJournal] interfaces so workflows can be tested with fakes.
//
//	st, err := store.Open(cfg.DatabasePath, cfg.JournalPath)
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
package store
