package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/inovacc/rael/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := NewJournal(filepath.Join(t.TempDir(), "reconcile.bolt"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = j.Close() })

	return j
}

func TestJournal_AppendAndList(t *testing.T) {
	j := newTestJournal(t)

	first, err := j.Append(model.ReconcileEntry{Kind: model.ReconcileOrphanedRemote, Provider: "github", ProviderRepositoryID: "7", Name: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Seq)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := j.Append(model.ReconcileEntry{Kind: model.ReconcilePendingRemoteDelete, Provider: "github", ProviderRepositoryID: "8", Name: "beta"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Seq)

	entries, err := j.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "alpha", entries[0].Name)
	assert.Equal(t, model.ReconcilePendingRemoteDelete, entries[1].Kind)
}

func TestJournal_RecordAttemptAndResolve(t *testing.T) {
	j := newTestJournal(t)

	entry, err := j.Append(model.ReconcileEntry{Kind: model.ReconcileOrphanedRemote, Name: "alpha"})
	require.NoError(t, err)

	require.NoError(t, j.RecordAttempt(entry.Seq, "502 bad gateway"))
	require.NoError(t, j.RecordAttempt(entry.Seq, "503 unavailable"))

	entries, err := j.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Attempts)
	assert.Equal(t, "503 unavailable", entries[0].LastError)

	require.NoError(t, j.Resolve(entry.Seq))
	require.NoError(t, j.Resolve(entry.Seq))

	entries, err = j.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Error(t, j.RecordAttempt(entry.Seq, "gone"))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "rael.db")
	journalPath := filepath.Join(dir, "reconcile.bolt")

	st, err := Open(dbPath, journalPath)
	require.NoError(t, err)

	identity := &model.Identity{Email: "a@b.com", UserName: "alice"}
	require.NoError(t, st.Identities().Create(context.Background(), identity))

	_, err = st.Journal().Append(model.ReconcileEntry{Kind: model.ReconcileOrphanedRemote, Name: "alpha"})
	require.NoError(t, err)

	require.NoError(t, st.Close())

	reopened, err := Open(dbPath, journalPath)
	require.NoError(t, err)

	defer func() { _ = reopened.Close() }()

	got, err := reopened.Identities().FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, got)

	entries, err := reopened.Journal().List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
