package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/inovacc/rael/internal/model"
	"go.etcd.io/bbolt"
)

const boltBucketReconcile = "reconcile" // key: big-endian seq -> ReconcileEntry JSON

// Journal is a bbolt-backed ReconcileJournal.
type Journal struct {
	storage *bbolt.DB
}

// NewJournal opens the journal at path, creating it when missing.
func NewJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketReconcile))
		return err
	}); err != nil {
		_ = instance.Close()

		return nil, err
	}

	return &Journal{storage: instance}, nil
}

// Close closes the journal.
func (j *Journal) Close() error {
	return j.storage.Close()
}

// Append stores entry under the next sequence number and returns it.
func (j *Journal) Append(entry model.ReconcileEntry) (model.ReconcileEntry, error) {
	err := j.storage.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketReconcile))

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		now := time.Now()
		entry.Seq = seq
		entry.CreatedAt = now
		entry.UpdatedAt = now

		data, err := json.Marshal(&entry)
		if err != nil {
			return err
		}

		return bucket.Put(seqKey(seq), data)
	})
	if err != nil {
		return model.ReconcileEntry{}, fmt.Errorf("appending reconcile entry: %w", err)
	}

	return entry, nil
}

// List returns the unresolved entries, oldest first.
func (j *Journal) List() ([]model.ReconcileEntry, error) {
	entries := make([]model.ReconcileEntry, 0)

	err := j.storage.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketReconcile)).ForEach(func(_, v []byte) error {
			var entry model.ReconcileEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}

			entries = append(entries, entry)

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing reconcile entries: %w", err)
	}

	return entries, nil
}

// RecordAttempt bumps the attempt counter of entry seq and stores lastErr.
func (j *Journal) RecordAttempt(seq uint64, lastErr string) error {
	return j.storage.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketReconcile))

		data := bucket.Get(seqKey(seq))
		if data == nil {
			return fmt.Errorf("reconcile entry %d not found", seq)
		}

		var entry model.ReconcileEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return err
		}

		entry.Attempts++
		entry.LastError = lastErr
		entry.UpdatedAt = time.Now()

		updated, err := json.Marshal(&entry)
		if err != nil {
			return err
		}

		return bucket.Put(seqKey(seq), updated)
	})
}

// Resolve removes entry seq. Resolving an unknown entry is a no-op.
func (j *Journal) Resolve(seq uint64) error {
	return j.storage.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketReconcile)).Delete(seqKey(seq))
	})
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)

	return key
}
