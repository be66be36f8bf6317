package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inovacc/rael/internal/application"
	"github.com/zalando/go-keyring"
)

// keyringTimeout bounds every keyring call; some backends block on a
// locked session bus.
const keyringTimeout = 5 * time.Second

// ErrSecretNotFound is returned when the keyring holds no entry for a key
var ErrSecretNotFound = errors.New("secret not found in keyring")

// KeyringError represents an error during keyring operations
type KeyringError struct {
	Operation string
	Err       error
}

func (e *KeyringError) Error() string {
	return fmt.Sprintf("keyring %s failed: %v", e.Operation, e.Err)
}

func (e *KeyringError) Unwrap() error {
	return e.Err
}

// SetSecret stores value under key in the system keyring
func SetSecret(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), keyringTimeout)
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		errCh <- keyring.Set(application.AppName, key, value)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return &KeyringError{Operation: "set", Err: err}
		}

		return nil
	case <-ctx.Done():
		return &KeyringError{Operation: "set", Err: ctx.Err()}
	}
}

// GetSecret retrieves the value stored under key
func GetSecret(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), keyringTimeout)
	defer cancel()

	type result struct {
		value string
		err   error
	}

	resultCh := make(chan result, 1)

	go func() {
		value, err := keyring.Get(application.AppName, key)
		resultCh <- result{value: value, err: err}
	}()

	select {
	case r := <-resultCh:
		if errors.Is(r.err, keyring.ErrNotFound) {
			return "", ErrSecretNotFound
		}

		if r.err != nil {
			return "", &KeyringError{Operation: "get", Err: r.err}
		}

		return r.value, nil
	case <-ctx.Done():
		return "", &KeyringError{Operation: "get", Err: ctx.Err()}
	}
}

// DeleteSecret removes key from the keyring. A missing entry is not an error.
func DeleteSecret(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), keyringTimeout)
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		errCh <- keyring.Delete(application.AppName, key)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return &KeyringError{Operation: "delete", Err: err}
		}

		return nil
	case <-ctx.Done():
		return &KeyringError{Operation: "delete", Err: ctx.Err()}
	}
}
