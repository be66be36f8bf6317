// Package tokencache persists the single bearer token rael keeps per machine.
//
// The token lives in one file named auth-token under the application
// directory. A save overwrites whatever was there. There is no locking:
// concurrent processes racing save and load get last-writer-wins.
package tokencache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store reads and writes the cached token file
type Store struct {
	path string
}

// New returns a store backed by the file at path
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the token file location
func (s *Store) Path() string {
	return s.path
}

// Save writes token to disk, creating the directory when absent and
// replacing any previous token.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}

	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}

	return nil
}

// Load returns the raw stored token. ok is false when no token has been saved.
func (s *Store) Load() (token string, ok bool, err error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("failed to read token: %w", err)
	}

	return string(data), true, nil
}

// Clear removes the cached token. Removing a missing token is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}

	return nil
}
